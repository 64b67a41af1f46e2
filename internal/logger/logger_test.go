package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCtxAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	ctx := WithRequestID(context.Background(), "abc-123")
	Ctx(ctx).Info("rendered", zap.String(ModeKey, "pro"))
	Ctx(context.Background()).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc-123", entries[0].ContextMap()[RequestIDKey])
	assert.Equal(t, "pro", entries[0].ContextMap()[ModeKey])
	assert.NotContains(t, entries[1].ContextMap(), RequestIDKey)
}

func TestRequestIDMissing(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
}

func TestSetNilFallsBackToNop(t *testing.T) {
	Set(nil)
	assert.NotNil(t, L())
	L().Info("dropped")
}

func TestInitializeDevelopment(t *testing.T) {
	require.NoError(t, Initialize(false))
	t.Cleanup(func() { Set(nil) })
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))
}
