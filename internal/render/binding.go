// Package render binds the QR rendering libraries to the application's
// configuration state.
package render

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/cristianadrielbraun/qrultimate/internal/compose"
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

var (
	// ErrNoSurface is returned by Export before anything has been rendered.
	ErrNoSurface = errors.New("render: no surface")
	// ErrVectorUnsupported is returned when an SVG export is requested from a
	// raster-only renderer.
	ErrVectorUnsupported = errors.New("render: renderer has no vector output")
	// ErrInvalidSize is returned for non-positive output dimensions.
	ErrInvalidSize = errors.New("render: invalid size")
)

// Renderer produces a raster surface from a configuration snapshot.
type Renderer interface {
	Render(ctx context.Context, o Options) (*Surface, error)
}

// VectorRenderer is implemented by renderers that can also emit SVG.
type VectorRenderer interface {
	RenderSVG(ctx context.Context, o Options, w io.Writer) error
}

// Container is a visible surface a Binding is mounted into.
type Container interface {
	Show(s *Surface)
}

// Binding is a long-lived handle to a Renderer. It is configured once and
// then patched with Update; every update re-renders the whole surface.
type Binding struct {
	mu        sync.Mutex
	renderer  Renderer
	opts      Options
	reference int
	surface   *Surface
	container Container
	// detached suppresses container updates while an export override is
	// active, so the preview never shows the export resolution.
	detached bool
}

// NewBinding returns a binding whose reference (preview) size is the
// initial width. Nothing is rendered until Update or Mount.
func NewBinding(r Renderer, initial Options) *Binding {
	return &Binding{
		renderer:  r,
		opts:      initial,
		reference: initial.Width,
	}
}

// Options returns a copy of the current configuration.
func (b *Binding) Options() Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts
}

// Surface returns the last rendered surface, nil if none.
func (b *Binding) Surface() *Surface {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface
}

// Reference returns the preview size restored after every export.
func (b *Binding) Reference() int {
	return b.reference
}

// Update applies opts and re-renders. Applying the same options twice
// yields the same surface.
func (b *Binding) Update(ctx context.Context, opts ...Option) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, o := range opts {
		o.apply(&b.opts)
	}
	return b.renderLocked(ctx)
}

// Mount attaches c and shows the current surface on it, rendering first when
// nothing has been rendered yet.
func (b *Binding) Mount(ctx context.Context, c Container) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.container = c
	if b.surface == nil {
		return b.renderLocked(ctx)
	}
	c.Show(b.surface)
	return nil
}

func (b *Binding) renderLocked(ctx context.Context) error {
	if b.opts.Width <= 0 || b.opts.Height <= 0 {
		b.surface = nil
		return errors.Wrapf(ErrInvalidSize, "%dx%d", b.opts.Width, b.opts.Height)
	}
	s, err := b.renderer.Render(ctx, b.opts)
	if err != nil {
		// A stale surface would export content that no longer matches the
		// configuration.
		b.surface = nil
		return errors.Wrap(err, "render")
	}
	b.surface = s
	if b.container != nil && !b.detached {
		b.container.Show(s)
	}
	return nil
}

// override renders at size and returns the release that restores the
// reference size. The release must run on every exit path. Callers hold b.mu.
func (b *Binding) override(ctx context.Context, size int) (release func() error, err error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "export size %d", size)
	}

	b.opts.Width, b.opts.Height = size, size
	b.detached = true
	release = func() error {
		b.opts.Width, b.opts.Height = b.reference, b.reference
		b.detached = false
		// The restore must happen even when the export was cancelled.
		return b.renderLocked(context.WithoutCancel(ctx))
	}

	if err := b.renderLocked(ctx); err != nil {
		return nil, multierr.Append(err, release())
	}
	return release, nil
}

// Export serializes the current configuration as name.<ext>.
func (b *Binding) Export(ctx context.Context, name string, f settings.Format) (*Artifact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exportLocked(ctx, name, f)
}

// ExportAt exports at size×size, then restores the preview dimensions
// whether or not the export succeeded. Concurrent callers serialize.
func (b *Binding) ExportAt(ctx context.Context, size int, name string, f settings.Format) (art *Artifact, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	release, err := b.override(ctx, size)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, release())
		if err != nil {
			art = nil
		}
	}()

	return b.exportLocked(ctx, name, f)
}

func (b *Binding) exportLocked(ctx context.Context, name string, f settings.Format) (*Artifact, error) {
	var buf bytes.Buffer

	switch f {
	case settings.FormatPNG, settings.FormatJPEG:
		if b.surface == nil {
			return nil, ErrNoSurface
		}
		if err := compose.Encode(&buf, b.surface.Image, f); err != nil {
			return nil, err
		}
	case settings.FormatSVG:
		vr, ok := b.renderer.(VectorRenderer)
		if !ok {
			return nil, ErrVectorUnsupported
		}
		if err := vr.RenderSVG(ctx, b.opts, &buf); err != nil {
			return nil, errors.Wrap(err, "render svg")
		}
	default:
		return nil, errors.Wrapf(settings.ErrUnknownValue, "format %d", f)
	}

	return &Artifact{
		Filename:    name + "." + f.Extension(),
		ContentType: f.ContentType(),
		Data:        buf.Bytes(),
		Width:       b.opts.Width,
		Height:      b.opts.Height,
	}, nil
}
