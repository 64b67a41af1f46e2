package render

import (
	"image"
	"image/color"
	"time"

	"github.com/cristianadrielbraun/qrultimate/internal/logo"
	"github.com/cristianadrielbraun/qrultimate/internal/scan"
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

// Options is the renderer configuration object. A Binding owns one and
// patches it through Option values.
type Options struct {
	Data        string
	Foreground  color.RGBA
	Background  color.RGBA
	ModuleShape settings.ModuleShape
	CornerShape settings.CornerShape
	Level       settings.Level
	Margin      int
	Logo        *logo.Image
	Width       int
	Height      int
}

// FromSettings builds renderer options from a panel's state at the given
// square size. Empty destination text becomes the placeholder.
func FromSettings(s settings.Settings, size int) Options {
	return Options{
		Data:        s.Effective(),
		Foreground:  s.Foreground,
		Background:  s.Background,
		ModuleShape: s.ModuleShape,
		CornerShape: s.CornerShape,
		Level:       s.Level,
		Margin:      s.Margin,
		Logo:        s.Logo,
		Width:       size,
		Height:      size,
	}
}

// Option patches a subset of Options.
type Option interface {
	apply(o *Options)
}

type funcOption struct {
	f func(o *Options)
}

func (fo *funcOption) apply(o *Options) {
	fo.f(o)
}

func newFuncOption(f func(o *Options)) *funcOption {
	return &funcOption{f: f}
}

// WithData sets the encoded text. Empty text becomes the placeholder.
func WithData(text string) Option {
	return newFuncOption(func(o *Options) {
		o.Data = settings.EffectiveData(text)
	})
}

// WithColors sets the foreground and background pair.
func WithColors(fg, bg color.RGBA) Option {
	return newFuncOption(func(o *Options) {
		o.Foreground = fg
		o.Background = bg
	})
}

func WithModuleShape(s settings.ModuleShape) Option {
	return newFuncOption(func(o *Options) {
		o.ModuleShape = s
	})
}

func WithCornerShape(s settings.CornerShape) Option {
	return newFuncOption(func(o *Options) {
		o.CornerShape = s
	})
}

func WithLevel(l settings.Level) Option {
	return newFuncOption(func(o *Options) {
		o.Level = l
	})
}

func WithMargin(m int) Option {
	return newFuncOption(func(o *Options) {
		o.Margin = m
	})
}

// WithLogo embeds img. A nil img clears the logo.
func WithLogo(img *logo.Image) Option {
	return newFuncOption(func(o *Options) {
		o.Logo = img
	})
}

// WithoutLogo clears the logo.
func WithoutLogo() Option {
	return WithLogo(nil)
}

// WithSize sets square output dimensions.
func WithSize(size int) Option {
	return newFuncOption(func(o *Options) {
		o.Width = size
		o.Height = size
	})
}

// Surface is the result of one render.
type Surface struct {
	Image    image.Image
	Width    int
	Height   int
	Modules  int
	Rendered time.Time
}

// Artifact is a serialized export ready to be downloaded.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	// Scan is the decoded content when the export was verified.
	Scan *scan.Result
}
