//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.943 generate -path ..

package components

import (
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

// PanelView is everything a presentation panel renders from.
type PanelView struct {
	Mode           settings.Mode
	Settings       settings.Settings
	PreviewVersion uint64
	ExportSizes    []int
}

// PreviewURL returns the preview image address, busted on every re-render.
func (v PanelView) PreviewURL() string {
	return "/api/studio/" + v.Mode.String() + "/preview?v=" + uitoa(v.PreviewVersion)
}

func (v PanelView) endpoint(action string) string {
	return "/api/studio/" + v.Mode.String() + "/" + action
}

// HasLogo reports whether a logo is embedded.
func (v PanelView) HasLogo() bool {
	return v.Settings.Logo != nil
}

// HomeView is the full page state.
type HomeView struct {
	URL   string
	Mode  settings.Mode
	Panel PanelView
}
