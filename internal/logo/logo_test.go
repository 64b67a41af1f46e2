package logo

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="10" viewBox="0 0 20 10">
<rect x="0" y="0" width="20" height="10" fill="#ff0000"/>
</svg>`

func TestReadPNG(t *testing.T) {
	data := pngBytes(t, 8, 4, color.RGBA{B: 255, A: 255})

	img, err := Read(context.Background(), bytes.NewReader(data), "brand.png", 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "brand.png", img.Name)
	assert.True(t, strings.HasPrefix(img.DataURI(), "data:image/png;base64,"))
	assert.False(t, img.IsSVG())

	decoded, err := img.Decode()
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Bounds().Dx())
	assert.Equal(t, 4, decoded.Bounds().Dy())
}

func TestReadEnforcesLimit(t *testing.T) {
	data := bytes.Repeat([]byte{1}, 64)
	_, err := Read(context.Background(), bytes.NewReader(data), "big.bin", 32)
	assert.True(t, errors.Is(err, ErrTooLarge))

	_, err = Read(context.Background(), bytes.NewReader(nil), "empty.png", 32)
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestReadKeepsUndecodableBytes(t *testing.T) {
	img, err := Read(context.Background(), strings.NewReader("definitely not an image"), "notes.txt", 0)
	require.NoError(t, err)

	_, err = img.Decode()
	assert.Error(t, err)
}

func TestDecodeRasterizesSVG(t *testing.T) {
	img, err := Read(context.Background(), strings.NewReader(redSquare), "logo.svg", 0)
	require.NoError(t, err)
	require.True(t, img.IsSVG(), "content type %s", img.ContentType)

	decoded, err := img.Decode()
	require.NoError(t, err)
	b := decoded.Bounds()
	assert.Equal(t, svgRasterSize, b.Dx())
	assert.Equal(t, svgRasterSize/2, b.Dy())

	r, g, bl, a := decoded.At(b.Dx()/2, b.Dy()/2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0), bl)
	assert.Equal(t, uint32(0xffff), a)
}

func TestFitKeepsAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	out := Fit(src, 50, 50)
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 25, out.Bounds().Dy())

	stretched := Stretch(src, 50, 50)
	assert.Equal(t, image.Rect(0, 0, 50, 50), stretched.Bounds())

	assert.InDelta(t, 2.0, Aspect(src), 1e-9)
}
