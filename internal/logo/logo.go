// Package logo ingests user supplied logo files into an embeddable form.
//
// Ingestion is deliberately permissive: bytes are kept as uploaded and only
// the renderers try to decode them. A logo that fails to decode is dropped
// from the render rather than rejected at upload time.
package logo

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/webp"
)

// DefaultLimit bounds uploads read by Read when no limit is given.
const DefaultLimit = 5 << 20

// svgRasterSize is the longest edge used when rasterizing vector logos.
const svgRasterSize = 512

var (
	// ErrTooLarge is returned when an upload exceeds the transport limit.
	ErrTooLarge = errors.New("logo exceeds upload limit")
	// ErrEmpty is returned for zero-byte uploads.
	ErrEmpty = errors.New("logo is empty")
)

// Image is an uploaded logo in its original encoding.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Read consumes r into an Image. limit <= 0 means DefaultLimit.
func Read(ctx context.Context, r io.Reader, name string, limit int64) (*Image, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "read logo")
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	return &Image{
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

// DataURI returns the logo as a self-contained data URI.
func (i *Image) DataURI() string {
	ct := i.ContentType
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = ct[:idx]
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// IsSVG reports whether the logo is a vector document.
func (i *Image) IsSVG() bool {
	return strings.HasPrefix(i.ContentType, "image/svg+xml")
}

// Decode turns the logo into a raster image. Raster formats go through the
// registered image decoders; SVG documents are rasterized.
func (i *Image) Decode() (image.Image, error) {
	if i == nil {
		return nil, errors.New("nil logo")
	}
	if i.IsSVG() {
		return rasterize(i.Data, svgRasterSize)
	}
	img, _, err := image.Decode(bytes.NewReader(i.Data))
	if err != nil {
		return nil, errors.Wrapf(err, "decode logo %q", i.Name)
	}
	return img, nil
}

func rasterize(data []byte, longest int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parse svg logo")
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		vw, vh = 1, 1
	}
	scale := float64(longest) / math.Max(vw, vh)
	w := int(math.Max(1, math.Round(vw*scale)))
	h := int(math.Max(1, math.Round(vh*scale)))

	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return rgba, nil
}

// Stretch resizes img to exactly w×h.
func Stretch(img image.Image, w, h int) image.Image {
	return resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
}

// Fit resizes img to the largest size that fits inside w×h keeping its
// aspect ratio.
func Fit(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || w <= 0 || h <= 0 {
		return img
	}
	scale := math.Min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	fw := int(math.Max(1, math.Round(float64(b.Dx())*scale)))
	fh := int(math.Max(1, math.Round(float64(b.Dy())*scale)))
	return resize.Resize(uint(fw), uint(fh), img, resize.Lanczos3)
}

// Aspect returns width/height of img, 1 for degenerate images.
func Aspect(img image.Image) float64 {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 1
	}
	return float64(b.Dx()) / float64(b.Dy())
}
