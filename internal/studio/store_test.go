package studio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrultimate/internal/render"
)

func TestStoreReusesSessions(t *testing.T) {
	s := NewStore(testConfig(), 4, time.Hour, time.Minute)
	ctx := context.Background()

	a, err := s.Session(ctx, "one")
	require.NoError(t, err)
	again, err := s.Session(ctx, "one")
	require.NoError(t, err)
	other, err := s.Session(ctx, "two")
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotSame(t, a, other)
}

func TestDownloadsAreOneShotAndScoped(t *testing.T) {
	s := NewStore(testConfig(), 4, time.Hour, time.Minute)
	art := &render.Artifact{Filename: "qr-pro-1000px.png"}

	id := s.PutDownload("one", art)
	_, ok := s.TakeDownload("two", id)
	assert.False(t, ok, "other sessions cannot take it")

	got, ok := s.TakeDownload("one", id)
	require.True(t, ok)
	assert.Same(t, art, got)

	_, ok = s.TakeDownload("one", id)
	assert.False(t, ok)
}

func TestEvictedSessionDropsDownloads(t *testing.T) {
	s := NewStore(testConfig(), 1, time.Hour, time.Minute)
	ctx := context.Background()

	_, err := s.Session(ctx, "one")
	require.NoError(t, err)
	id := s.PutDownload("one", &render.Artifact{})

	_, err = s.Session(ctx, "two")
	require.NoError(t, err)

	_, ok := s.TakeDownload("one", id)
	assert.False(t, ok)
}

func TestNewSessionIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
	assert.Len(t, NewSessionID(), 36)
}
