// Package studio owns one user's editing session: the shared destination
// text, the active mode, both panels' settings and their render bindings.
package studio

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrultimate/internal/compose"
	"github.com/cristianadrielbraun/qrultimate/internal/logger"
	"github.com/cristianadrielbraun/qrultimate/internal/logo"
	"github.com/cristianadrielbraun/qrultimate/internal/render"
	"github.com/cristianadrielbraun/qrultimate/internal/scan"
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

// ClassicExportName is the fixed filename of the classic export, without
// extension.
const ClassicExportName = "qr-classic-padded"

var (
	// ErrUnsupportedSize is returned for pro export sizes outside the
	// configured set.
	ErrUnsupportedSize = errors.New("unsupported export size")
	// ErrNotInMode is returned when a control does not exist on a panel.
	ErrNotInMode = errors.New("control not available in this mode")
)

// Config tunes the export behavior of every controller.
type Config struct {
	// SettleDelay is waited before a pro export so a configuration update
	// sent right before it has been applied.
	SettleDelay time.Duration
	// ExportSizes lists the pro export resolutions.
	ExportSizes []int
	// Verify decodes raster exports and records the scanned text.
	Verify bool
}

func DefaultConfig() Config {
	return Config{
		SettleDelay: 100 * time.Millisecond,
		ExportSizes: []int{1000, 2000},
	}
}

type panel struct {
	settings settings.Settings
	binding  *render.Binding
	pane     *Pane
}

// Controller is the top-level owner of the Configuration State. Every
// mutator changes one field and forwards exactly that field to the panel's
// binding.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	url    string
	mode   settings.Mode
	panels map[settings.Mode]*panel
}

// New builds both panels with their defaults and renders the first previews.
func New(ctx context.Context, cfg Config) (*Controller, error) {
	c := &Controller{
		cfg:  cfg,
		mode: settings.ModeClassic,
		panels: map[settings.Mode]*panel{
			settings.ModeClassic: newPanel(settings.Classic(), render.NewClassicRenderer(), settings.ClassicPreviewSize),
			settings.ModePro:     newPanel(settings.Pro(), render.NewProRenderer(), settings.ProPreviewSize),
		},
	}

	var err error
	for _, m := range settings.Modes {
		p := c.panels[m]
		err = multierr.Append(err, errors.Wrapf(p.binding.Mount(ctx, p.pane), "mount %s", m))
	}
	return c, err
}

func newPanel(s settings.Settings, r render.Renderer, reference int) *panel {
	return &panel{
		settings: s,
		binding:  render.NewBinding(r, render.FromSettings(s, reference)),
		pane:     &Pane{},
	}
}

func (c *Controller) panel(m settings.Mode) (*panel, error) {
	p, ok := c.panels[m]
	if !ok {
		return nil, errors.Wrapf(settings.ErrUnknownValue, "mode %d", m)
	}
	return p, nil
}

// URL returns the shared destination text as typed, possibly empty.
func (c *Controller) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

// Mode returns the active panel.
func (c *Controller) Mode() settings.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Settings returns a copy of a panel's state.
func (c *Controller) Settings(m settings.Mode) (settings.Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.panel(m)
	if err != nil {
		return settings.Settings{}, err
	}
	return p.settings, nil
}

// Pane returns the preview surface of a panel.
func (c *Controller) Pane(m settings.Mode) (*Pane, error) {
	p, err := c.panel(m)
	if err != nil {
		return nil, err
	}
	return p.pane, nil
}

// SetURL updates the destination text shared by both panels.
func (c *Controller) SetURL(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.url = text
	var err error
	for _, m := range settings.Modes {
		p := c.panels[m]
		p.settings.Data = text
		err = multierr.Append(err, p.binding.Update(ctx, render.WithData(text)))
	}
	return err
}

// SetMode switches the visible panel. The destination text is untouched.
func (c *Controller) SetMode(m settings.Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.panel(m); err != nil {
		return err
	}
	c.mode = m
	return nil
}

// update mutates one panel's settings and forwards opt to its binding.
func (c *Controller) update(ctx context.Context, m settings.Mode, mutate func(s *settings.Settings), opt render.Option) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.panel(m)
	if err != nil {
		return err
	}
	mutate(&p.settings)
	if opt == nil {
		return nil
	}
	return p.binding.Update(ctx, opt)
}

func (c *Controller) SetLevel(ctx context.Context, m settings.Mode, l settings.Level) error {
	if _, err := settings.ParseLevel(l.String()); err != nil {
		return err
	}
	return c.update(ctx, m, func(s *settings.Settings) { s.Level = l }, render.WithLevel(l))
}

func (c *Controller) SetColors(ctx context.Context, m settings.Mode, fg, bg color.RGBA) error {
	return c.update(ctx, m, func(s *settings.Settings) {
		s.Foreground = fg
		s.Background = bg
	}, render.WithColors(fg, bg))
}

// SetMargin stores the quiet-zone margin. The classic margin is applied by
// the compositor, so only the pro binding re-renders.
func (c *Controller) SetMargin(ctx context.Context, m settings.Mode, margin int) error {
	if err := settings.ValidateMargin(margin); err != nil {
		return err
	}
	var opt render.Option
	if m == settings.ModePro {
		opt = render.WithMargin(margin)
	}
	return c.update(ctx, m, func(s *settings.Settings) { s.Margin = margin }, opt)
}

func (c *Controller) SetModuleShape(ctx context.Context, m settings.Mode, shape settings.ModuleShape) error {
	if m != settings.ModePro {
		return errors.Wrap(ErrNotInMode, "module shape")
	}
	if _, err := settings.ParseModuleShape(shape.String()); err != nil {
		return err
	}
	return c.update(ctx, m, func(s *settings.Settings) { s.ModuleShape = shape }, render.WithModuleShape(shape))
}

func (c *Controller) SetCornerShape(ctx context.Context, m settings.Mode, shape settings.CornerShape) error {
	if m != settings.ModePro {
		return errors.Wrap(ErrNotInMode, "corner shape")
	}
	if _, err := settings.ParseCornerShape(shape.String()); err != nil {
		return err
	}
	return c.update(ctx, m, func(s *settings.Settings) { s.CornerShape = shape }, render.WithCornerShape(shape))
}

// SetFormat selects the pro export format. It does not affect the preview.
func (c *Controller) SetFormat(m settings.Mode, f settings.Format) error {
	if m != settings.ModePro {
		return errors.Wrap(ErrNotInMode, "export format")
	}
	if _, err := settings.ParseFormat(f.String()); err != nil {
		return err
	}
	return c.update(context.Background(), m, func(s *settings.Settings) { s.Format = f }, nil)
}

// SetLogo embeds img in the panel's next render.
func (c *Controller) SetLogo(ctx context.Context, m settings.Mode, img *logo.Image) error {
	return c.update(ctx, m, func(s *settings.Settings) { s.Logo = img }, render.WithLogo(img))
}

// ClearLogo removes the logo; the very next render is logo-free.
func (c *Controller) ClearLogo(ctx context.Context, m settings.Mode) error {
	return c.update(ctx, m, func(s *settings.Settings) { s.Logo = nil }, render.WithoutLogo())
}

// Preview returns what the panel currently shows. The classic preview
// includes the composited margin so it matches the classic export.
func (c *Controller) Preview(m settings.Mode) (image.Image, error) {
	s, err := c.Settings(m)
	if err != nil {
		return nil, err
	}
	p, _ := c.panel(m)
	surface := p.pane.Surface()
	if surface == nil {
		return nil, render.ErrNoSurface
	}
	if m == settings.ModeClassic {
		return compose.Pad(surface.Image, s.Margin, s.Background)
	}
	return surface.Image, nil
}

// ExportClassic serializes the padded composite of the current classic
// surface. Before the first render it does nothing and returns (nil, nil).
func (c *Controller) ExportClassic(ctx context.Context) (*render.Artifact, error) {
	s, err := c.Settings(settings.ModeClassic)
	if err != nil {
		return nil, err
	}
	p, _ := c.panel(settings.ModeClassic)
	var src image.Image
	if surface := p.binding.Surface(); surface != nil {
		src = surface.Image
	}

	art, ok, err := ExportPadded(src, s.Margin, s.Background)
	if err != nil || !ok {
		return nil, err
	}
	c.verify(ctx, art, s.Effective())
	return art, nil
}

// ExportPadded pads surface by margin on every side and encodes it as the
// classic PNG download. A nil surface yields (nil, false, nil).
func ExportPadded(surface image.Image, margin int, bg color.RGBA) (*render.Artifact, bool, error) {
	if surface == nil {
		return nil, false, nil
	}
	composite, err := compose.Pad(surface, margin, bg)
	if err != nil {
		return nil, false, err
	}
	var buf bytes.Buffer
	if err := compose.Encode(&buf, composite, settings.FormatPNG); err != nil {
		return nil, false, err
	}
	return &render.Artifact{
		Filename:    ClassicExportName + "." + settings.FormatPNG.Extension(),
		ContentType: settings.FormatPNG.ContentType(),
		Data:        buf.Bytes(),
		Width:       composite.Bounds().Dx(),
		Height:      composite.Bounds().Dy(),
	}, true, nil
}

// ProExportName is the filename of a pro export at size, without extension.
func ProExportName(size int) string {
	return "qr-pro-" + strconv.Itoa(size) + "px"
}

// ExportPro waits for the settle delay, then exports the pro panel at size
// in the selected format. The preview returns to its reference size
// whatever the outcome.
func (c *Controller) ExportPro(ctx context.Context, size int) (*render.Artifact, error) {
	if !slices.Contains(c.cfg.ExportSizes, size) {
		return nil, errors.Wrapf(ErrUnsupportedSize, "%dpx", size)
	}
	s, err := c.Settings(settings.ModePro)
	if err != nil {
		return nil, err
	}

	if c.cfg.SettleDelay > 0 {
		t := time.NewTimer(c.cfg.SettleDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	p, _ := c.panel(settings.ModePro)
	art, err := p.binding.ExportAt(ctx, size, ProExportName(size), s.Format)
	if err != nil {
		return nil, errors.Wrapf(err, "export pro %dpx", size)
	}

	c.verify(ctx, art, s.Effective())
	return art, nil
}

// verify records the scanned text on art. An unreadable export is logged,
// not rejected.
func (c *Controller) verify(ctx context.Context, art *render.Artifact, want string) {
	if !c.cfg.Verify {
		return
	}
	if err := Verify(art, want); err != nil {
		logger.Ctx(ctx).Warn("export failed scan verification",
			zap.String("file", art.Filename),
			zap.Error(err),
		)
	}
}

// Verify decodes a raster artifact with a quiet zone added, stores the
// result on art and checks it against want. Vector artifacts are skipped.
func Verify(art *render.Artifact, want string) error {
	if art.ContentType == settings.FormatSVG.ContentType() {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(art.Data))
	if err != nil {
		return errors.Wrap(err, "decode export")
	}
	quiet := max(img.Bounds().Dx()/10, 8)
	padded, err := compose.Pad(img, quiet, color.White)
	if err != nil {
		return err
	}
	res, err := scan.Decode(padded)
	if err != nil {
		return err
	}
	art.Scan = res
	if res.Text != want {
		return errors.Wrapf(scan.ErrMismatch, "got %q", res.Text)
	}
	return nil
}
