package studio

import (
	"bytes"
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/cristianadrielbraun/qrultimate/internal/compose"
	"github.com/cristianadrielbraun/qrultimate/internal/render"
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

// MaxRenderSize bounds one-shot renders.
const MaxRenderSize = 4000

// Render produces one artifact from s without a session. Classic symbols
// are drawn at size and then grow by the margin on every side; pro symbols
// keep size×size with the margin inside. Only pro renders SVG.
func Render(ctx context.Context, m settings.Mode, s settings.Settings, size int) (*render.Artifact, error) {
	if size <= 0 || size > MaxRenderSize {
		return nil, errors.Wrapf(render.ErrInvalidSize, "size %d (want 1..%d)", size, MaxRenderSize)
	}
	if err := settings.ValidateMargin(s.Margin); err != nil {
		return nil, err
	}

	switch m {
	case settings.ModeClassic:
		return renderClassic(ctx, s, size)
	case settings.ModePro:
		b := render.NewBinding(render.NewProRenderer(), render.FromSettings(s, size))
		if !s.Format.Vector() {
			if err := b.Update(ctx); err != nil {
				return nil, err
			}
		}
		return b.Export(ctx, ProExportName(size), s.Format)
	}
	return nil, errors.Wrapf(settings.ErrUnknownValue, "mode %d", m)
}

func renderClassic(ctx context.Context, s settings.Settings, size int) (*render.Artifact, error) {
	if s.Format.Vector() {
		return nil, errors.Wrap(compose.ErrVectorFormat, "classic")
	}
	b := render.NewBinding(render.NewClassicRenderer(), render.FromSettings(s, size))
	if err := b.Update(ctx); err != nil {
		return nil, err
	}
	composite, err := compose.Pad(b.Surface().Image, s.Margin, s.Background)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := compose.Encode(&buf, composite, s.Format); err != nil {
		return nil, err
	}
	return &render.Artifact{
		Filename:    "qr-classic-" + strconv.Itoa(size) + "px." + s.Format.Extension(),
		ContentType: s.Format.ContentType(),
		Data:        buf.Bytes(),
		Width:       composite.Bounds().Dx(),
		Height:      composite.Bounds().Dy(),
	}, nil
}
