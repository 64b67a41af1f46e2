package components

import (
	"strconv"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

const buttonClass = "rounded-md px-3 py-2 text-sm font-medium transition-colors"

// URLPlaceholder is shown in the empty URL field.
const URLPlaceholder = settings.Placeholder

// ModeTabs renders the classic/pro toggle. Switching never touches the URL
// field.
func ModeTabs(active settings.Mode) templ.Component { return modeTabs(active, false) }

// ModeTabsSwap is ModeTabs marked for an out-of-band htmx swap.
func ModeTabsSwap(active settings.Mode) templ.Component { return modeTabs(active, true) }

func modeTitle(m settings.Mode) string {
	if m == settings.ModePro {
		return "Pro"
	}
	return "Clásico"
}

func modeVals(m settings.Mode) string {
	return `{"mode":"` + m.String() + `"}`
}

func tabClass(active bool) string {
	if active {
		return twmerge.Merge(buttonClass, "bg-zinc-100 text-zinc-700", "bg-zinc-900 text-white")
	}
	return twmerge.Merge(buttonClass, "bg-zinc-100 text-zinc-700")
}

func primaryButtonClass() string {
	return twmerge.Merge(buttonClass, "bg-zinc-900 text-white hover:bg-zinc-700")
}

func secondaryButtonClass() string {
	return twmerge.Merge(buttonClass, "bg-zinc-100")
}

func exportURL(size int) string {
	return "/api/studio/" + settings.ModePro.String() + "/export?size=" + strconv.Itoa(size)
}

func uitoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func tags[T interface{ String() string }](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
