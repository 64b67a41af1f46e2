package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"github.com/pkg/errors"
	skip2 "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrultimate/internal/logger"
	"github.com/cristianadrielbraun/qrultimate/internal/logo"
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

// Classic logo geometry: a 50px logo on the 280px reference surface.
const (
	classicLogoSize      = 50
	classicReferenceSize = settings.ClassicPreviewSize
)

// ClassicRenderer draws plain square-module symbols without a quiet zone.
// Shapes and margin are ignored; the margin is added by the compositor at
// export time.
type ClassicRenderer struct{}

func NewClassicRenderer() *ClassicRenderer {
	return &ClassicRenderer{}
}

func classicLevel(l settings.Level) (skip2.RecoveryLevel, error) {
	switch l {
	case settings.LevelLow:
		return skip2.Low, nil
	case settings.LevelMedium:
		return skip2.Medium, nil
	case settings.LevelQuartile:
		return skip2.High, nil
	case settings.LevelHigh:
		return skip2.Highest, nil
	}
	return 0, errors.Wrapf(settings.ErrUnknownValue, "level %d", l)
}

func (r *ClassicRenderer) Render(ctx context.Context, o Options) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	level, err := classicLevel(o.Level)
	if err != nil {
		return nil, err
	}

	q, err := skip2.New(settings.EffectiveData(o.Data), level)
	if err != nil {
		return nil, errors.Wrap(err, "encode classic symbol")
	}
	q.DisableBorder = true
	q.ForegroundColor = o.Foreground
	q.BackgroundColor = o.Background

	size := o.Width
	modules := len(q.Bitmap())
	if size < modules {
		size = modules
	}

	src := q.Image(size)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)

	if o.Logo != nil {
		if err := placeClassicLogo(img, o.Logo, modules, o.Background); err != nil {
			logger.Ctx(ctx).Warn("classic logo skipped",
				zap.String("logo", o.Logo.Name),
				zap.Error(err),
			)
		}
	}

	return &Surface{
		Image:    img,
		Width:    size,
		Height:   size,
		Modules:  modules,
		Rendered: time.Now(),
	}, nil
}

// placeClassicLogo clears every module under the centered logo box to the
// background and draws the logo on top.
func placeClassicLogo(img *image.RGBA, l *logo.Image, modules int, bg color.RGBA) error {
	decoded, err := l.Decode()
	if err != nil {
		return err
	}

	size := img.Bounds().Dx()
	side := int(math.Round(float64(classicLogoSize) * float64(size) / float64(classicReferenceSize)))
	if side <= 0 {
		return nil
	}
	box := image.Rect((size-side)/2, (size-side)/2, (size-side)/2+side, (size-side)/2+side)

	// Module-aligned excavation using the same pixel to module mapping as
	// the symbol rasterizer.
	m0, m1 := box.Min.X*modules/size, (box.Max.X-1)*modules/size
	for y := 0; y < size; y++ {
		my := y * modules / size
		if my < m0 || my > m1 {
			continue
		}
		for x := 0; x < size; x++ {
			if mx := x * modules / size; mx >= m0 && mx <= m1 {
				img.SetRGBA(x, y, bg)
			}
		}
	}

	fitted := logo.Fit(decoded, side, side)
	fb := fitted.Bounds()
	at := image.Pt(box.Min.X+(side-fb.Dx())/2, box.Min.Y+(side-fb.Dy())/2)
	draw.Draw(img, image.Rectangle{Min: at, Max: at.Add(fb.Size())}, fitted, fb.Min, draw.Over)
	return nil
}
