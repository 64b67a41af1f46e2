// Package toast renders dismissible notification fragments for htmx swaps.
package toast

import (
	"strconv"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

type Variant string

const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantError   Variant = "error"
	VariantWarning Variant = "warning"
	VariantInfo    Variant = "info"
)

type Position string

const (
	PositionTopRight     Position = "top-right"
	PositionTopLeft      Position = "top-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomCenter Position = "bottom-center"
)

type Props struct {
	ID            string
	Class         string
	Title         string
	Description   string
	Variant       Variant
	Position      Position
	Duration      int
	Dismissible   bool
	ShowIndicator bool
	Icon          bool
}

var variantClasses = map[Variant]string{
	VariantDefault: "border-zinc-200 bg-white text-zinc-900",
	VariantSuccess: "border-green-200 bg-green-50 text-green-900",
	VariantError:   "border-red-200 bg-red-50 text-red-900",
	VariantWarning: "border-amber-200 bg-amber-50 text-amber-900",
	VariantInfo:    "border-sky-200 bg-sky-50 text-sky-900",
}

var positionClasses = map[Position]string{
	PositionTopRight:     "top-4 right-4",
	PositionTopLeft:      "top-4 left-4",
	PositionBottomRight:  "bottom-4 right-4",
	PositionBottomLeft:   "bottom-4 left-4",
	PositionBottomCenter: "bottom-4 left-1/2 -translate-x-1/2",
}

var icons = map[Variant]string{
	VariantSuccess: "✓",
	VariantError:   "✕",
	VariantWarning: "!",
	VariantInfo:    "i",
}

// Toast renders a toast. Duration is in milliseconds; zero keeps it open.
func Toast(p Props) templ.Component {
	if p.Variant == "" {
		p.Variant = VariantDefault
	}
	if p.Position == "" {
		p.Position = PositionBottomRight
	}
	return toast(p)
}

func (p Props) class() string {
	return twmerge.Merge(
		"fixed z-50 flex w-80 items-start gap-3 rounded-lg border p-4 shadow-lg",
		positionClasses[p.Position],
		variantClasses[p.Variant],
		p.Class,
	)
}

func (p Props) icon() (string, bool) {
	if !p.Icon {
		return "", false
	}
	icon, ok := icons[p.Variant]
	return icon, ok
}

func (p Props) indicatorStyle() templ.SafeCSS {
	return templ.SafeCSS("animation: toast-progress " + strconv.Itoa(p.Duration) + "ms linear forwards;")
}
