package scan

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	skip2 "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symbol(t *testing.T, text string) image.Image {
	t.Helper()
	q, err := skip2.New(text, skip2.Medium)
	require.NoError(t, err)
	return q.Image(256)
}

func TestDecode(t *testing.T) {
	res, err := Decode(symbol(t, "https://example.com/menu"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/menu", res.Text)
}

func TestVerify(t *testing.T) {
	img := symbol(t, "hello")
	assert.NoError(t, Verify(img, "hello"))

	err := Verify(img, "goodbye")
	assert.True(t, errors.Is(err, ErrMismatch))
}

func TestDecodeBlankImage(t *testing.T) {
	_, err := Decode(image.NewGray(image.Rect(0, 0, 64, 64)))
	assert.Error(t, err)

	_, err = Decode(nil)
	assert.Error(t, err)
}
