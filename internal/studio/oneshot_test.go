package studio

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrultimate/internal/compose"
	"github.com/cristianadrielbraun/qrultimate/internal/render"
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

func TestRenderClassicGrowsByMargin(t *testing.T) {
	s := settings.Classic()
	s.Data = "https://oneshot.example"
	s.Format = settings.FormatJPEG

	art, err := Render(context.Background(), settings.ModeClassic, s, 200)
	require.NoError(t, err)
	assert.Equal(t, "qr-classic-200px.jpg", art.Filename)
	assert.Equal(t, 240, art.Width)

	img, err := jpeg.Decode(bytes.NewReader(art.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 240, 240), img.Bounds())

	require.NoError(t, Verify(art, "https://oneshot.example"))
	assert.Equal(t, "https://oneshot.example", art.Scan.Text)
}

func TestRenderProKeepsSize(t *testing.T) {
	s := settings.Pro()
	s.Data = "https://pro.example"
	s.Margin = 20

	art, err := Render(context.Background(), settings.ModePro, s, 400)
	require.NoError(t, err)
	assert.Equal(t, "qr-pro-400px.png", art.Filename)
	assert.Equal(t, 400, art.Width)
	require.NoError(t, Verify(art, "https://pro.example"))
}

func TestRenderProSVG(t *testing.T) {
	s := settings.Pro()
	s.Format = settings.FormatSVG

	art, err := Render(context.Background(), settings.ModePro, s, 300)
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", art.ContentType)
	assert.True(t, strings.HasPrefix(string(art.Data), "<?xml"))
	assert.NoError(t, Verify(art, "ignored for vectors"))
	assert.Nil(t, art.Scan)
}

func TestRenderRejects(t *testing.T) {
	ctx := context.Background()

	_, err := Render(ctx, settings.ModePro, settings.Pro(), MaxRenderSize+1)
	assert.True(t, errors.Is(err, render.ErrInvalidSize))

	s := settings.Classic()
	s.Format = settings.FormatSVG
	_, err = Render(ctx, settings.ModeClassic, s, 280)
	assert.True(t, errors.Is(err, compose.ErrVectorFormat))

	s = settings.Pro()
	s.Margin = 7
	_, err = Render(ctx, settings.ModePro, s, 300)
	assert.True(t, errors.Is(err, settings.ErrInvalidMargin))
}

func TestVerifyMismatch(t *testing.T) {
	s := settings.Classic()
	s.Data = "https://a.example"
	art, err := Render(context.Background(), settings.ModeClassic, s, 280)
	require.NoError(t, err)

	assert.Error(t, Verify(art, "https://b.example"))
	require.NotNil(t, art.Scan)
	assert.Equal(t, "https://a.example", art.Scan.Text)
}
