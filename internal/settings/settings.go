// Package settings holds the user-adjustable rendering parameters of both
// presentation pipelines.
package settings

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cristianadrielbraun/qrultimate/internal/logo"
)

// Placeholder is rendered whenever the destination text is empty.
const Placeholder = "https://example.com"

// Margin limits, in pixels.
const (
	MaxMargin  = 50
	MarginStep = 5
)

// Reference sizes of the live previews.
const (
	ClassicPreviewSize = 280
	ProPreviewSize     = 300
)

// ErrUnknownValue is returned when a tag does not name a member of one of the
// closed enumerations below.
var ErrUnknownValue = errors.New("unknown value")

// ErrInvalidMargin is returned for margins outside 0..MaxMargin or off-step.
var ErrInvalidMargin = errors.New("invalid margin")

// Mode selects one of the two presentation pipelines.
type Mode uint8

const (
	ModeClassic Mode = iota
	ModePro
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeClassic, ModePro}

func (m Mode) String() string {
	switch m {
	case ModeClassic:
		return "classic"
	case ModePro:
		return "pro"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// ParseMode parses "classic" or "pro".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic":
		return ModeClassic, nil
	case "pro":
		return ModePro, nil
	}
	return 0, errors.Wrapf(ErrUnknownValue, "mode %q", s)
}

// Level is the error-correction density, ordered from least to most robust.
type Level uint8

const (
	LevelLow Level = iota
	LevelMedium
	LevelQuartile
	LevelHigh
)

// Levels lists every level from low to max.
var Levels = []Level{LevelLow, LevelMedium, LevelQuartile, LevelHigh}

// String returns the single-letter tag (L, M, Q, H).
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "L"
	case LevelMedium:
		return "M"
	case LevelQuartile:
		return "Q"
	case LevelHigh:
		return "H"
	}
	return "level(" + strconv.Itoa(int(l)) + ")"
}

// Label is the human readable density name shown on the level selector.
func (l Level) Label() string {
	switch l {
	case LevelLow:
		return "Baja"
	case LevelMedium:
		return "Media"
	case LevelQuartile:
		return "Alta"
	case LevelHigh:
		return "Max"
	}
	return l.String()
}

// ParseLevel accepts the tags L, M, Q and H, case-insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return LevelLow, nil
	case "M":
		return LevelMedium, nil
	case "Q":
		return LevelQuartile, nil
	case "H":
		return LevelHigh, nil
	}
	return 0, errors.Wrapf(ErrUnknownValue, "level %q", s)
}

// ModuleShape is the shape of each data module.
type ModuleShape uint8

const (
	ModuleSquare ModuleShape = iota
	ModuleRounded
	ModuleDots
)

var ModuleShapes = []ModuleShape{ModuleSquare, ModuleRounded, ModuleDots}

func (s ModuleShape) String() string {
	switch s {
	case ModuleSquare:
		return "square"
	case ModuleRounded:
		return "rounded"
	case ModuleDots:
		return "dots"
	}
	return "module(" + strconv.Itoa(int(s)) + ")"
}

func ParseModuleShape(s string) (ModuleShape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "square":
		return ModuleSquare, nil
	case "rounded":
		return ModuleRounded, nil
	case "dots":
		return ModuleDots, nil
	}
	return 0, errors.Wrapf(ErrUnknownValue, "module shape %q", s)
}

// CornerShape is the shape of the three finder patterns.
type CornerShape uint8

const (
	CornerSquare CornerShape = iota
	CornerExtraRounded
	CornerDot
)

var CornerShapes = []CornerShape{CornerSquare, CornerExtraRounded, CornerDot}

func (s CornerShape) String() string {
	switch s {
	case CornerSquare:
		return "square"
	case CornerExtraRounded:
		return "extra-rounded"
	case CornerDot:
		return "dot"
	}
	return "corner(" + strconv.Itoa(int(s)) + ")"
}

func ParseCornerShape(s string) (CornerShape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "square":
		return CornerSquare, nil
	case "extra-rounded":
		return CornerExtraRounded, nil
	case "dot":
		return CornerDot, nil
	}
	return 0, errors.Wrapf(ErrUnknownValue, "corner shape %q", s)
}

// Format is the serialization of an exported image.
type Format uint8

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatSVG
)

var Formats = []Format{FormatPNG, FormatJPEG, FormatSVG}

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatSVG:
		return "svg"
	}
	return "format(" + strconv.Itoa(int(f)) + ")"
}

// Extension is the file extension without the leading dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return f.String()
}

func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "application/octet-stream"
}

// Vector reports whether the format is a vector document.
func (f Format) Vector() bool { return f == FormatSVG }

// ParseFormat accepts png, jpeg (or jpg) and svg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "svg":
		return FormatSVG, nil
	}
	return 0, errors.Wrapf(ErrUnknownValue, "format %q", s)
}

// Settings is the Configuration State of one presentation panel. Every field
// is set directly by the user; nothing here is derived or cached.
type Settings struct {
	Data        string
	Foreground  color.RGBA
	Background  color.RGBA
	ModuleShape ModuleShape
	CornerShape CornerShape
	Level       Level
	Margin      int
	Logo        *logo.Image
	Format      Format
	ExportSize  int
}

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Classic returns the initial state of the classic panel.
func Classic() Settings {
	return Settings{
		Foreground:  black,
		Background:  white,
		ModuleShape: ModuleSquare,
		CornerShape: CornerSquare,
		Level:       LevelLow,
		Margin:      20,
		Format:      FormatPNG,
		ExportSize:  ClassicPreviewSize,
	}
}

// Pro returns the initial state of the pro panel.
func Pro() Settings {
	return Settings{
		Foreground:  black,
		Background:  white,
		ModuleShape: ModuleRounded,
		CornerShape: CornerExtraRounded,
		Level:       LevelQuartile,
		Margin:      0,
		Format:      FormatPNG,
		ExportSize:  1000,
	}
}

// Defaults returns the initial state for the given mode.
func Defaults(m Mode) Settings {
	if m == ModePro {
		return Pro()
	}
	return Classic()
}

// Effective returns the text handed to the renderer.
func (s Settings) Effective() string { return EffectiveData(s.Data) }

// EffectiveData substitutes the placeholder for empty destination text.
func EffectiveData(text string) string {
	if text == "" {
		return Placeholder
	}
	return text
}

// ValidateMargin checks m against the slider range 0..MaxMargin, step MarginStep.
func ValidateMargin(m int) error {
	if m < 0 || m > MaxMargin || m%MarginStep != 0 {
		return errors.Wrapf(ErrInvalidMargin, "margin %d (want 0..%d step %d)", m, MaxMargin, MarginStep)
	}
	return nil
}
