// Package compose builds padded composites of rendered QR surfaces and
// serializes raster images.
package compose

import (
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/pkg/errors"

	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

// JPEGQuality is used for every JPEG export.
const JPEGQuality = 92

var (
	ErrNegativeMargin = errors.New("compose: negative margin")
	ErrNilSource      = errors.New("compose: nil source image")
	ErrVectorFormat   = errors.New("compose: vector format has no raster encoding")
)

// Pad returns a new image margin pixels larger than src on every side,
// filled with bg, with src copied unchanged at (margin, margin).
//
// A zero margin still allocates a fresh composite identical to src.
func Pad(src image.Image, margin int, bg color.Color) (*image.RGBA, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if margin < 0 {
		return nil, errors.Wrapf(ErrNegativeMargin, "margin %d", margin)
	}

	sb := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, sb.Dx()+2*margin, sb.Dy()+2*margin))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	inner := image.Rect(margin, margin, margin+sb.Dx(), margin+sb.Dy())
	draw.Draw(out, inner, src, sb.Min, draw.Src)
	return out, nil
}

// Center places src in the middle of a w×h canvas filled with bg.
func Center(src image.Image, w, h int, bg color.Color) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	sb := src.Bounds()
	at := image.Pt((w-sb.Dx())/2, (h-sb.Dy())/2)
	draw.Draw(out, image.Rectangle{Min: at, Max: at.Add(sb.Size())}, src, sb.Min, draw.Src)
	return out
}

// Flatten composites img over an opaque background. Transparent backgrounds
// fall back to white.
func Flatten(img image.Image, bg color.RGBA) *image.RGBA {
	bg.A = 255
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

// Encode writes img to w as PNG or JPEG.
func Encode(w io.Writer, img image.Image, f settings.Format) error {
	switch f {
	case settings.FormatPNG:
		return errors.Wrap(png.Encode(w, img), "encode png")
	case settings.FormatJPEG:
		out := Flatten(img, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		return errors.Wrap(jpeg.Encode(w, out, &jpeg.Options{Quality: JPEGQuality}), "encode jpeg")
	case settings.FormatSVG:
		return ErrVectorFormat
	}
	return errors.Wrapf(settings.ErrUnknownValue, "format %d", f)
}
