package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrultimate/internal/settings"
	"github.com/cristianadrielbraun/qrultimate/web/components"
)

func TestHomePage(t *testing.T) {
	view := components.HomeView{
		URL:  `https://example.com/?q="x"`,
		Mode: settings.ModeClassic,
		Panel: components.PanelView{
			Mode:     settings.ModeClassic,
			Settings: settings.Classic(),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, HomePage(view).Render(context.Background(), &buf))
	html := buf.String()

	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, `<script src="https://unpkg.com/htmx.org@2.0.3"></script>`)
	assert.Contains(t, html, `placeholder="https://example.com"`)
	assert.Contains(t, html, "&#34;x&#34;")
	assert.Contains(t, html, `id="mode-tabs"`)
	assert.Contains(t, html, `id="panel"`)
	assert.Contains(t, html, `<div id="toasts"></div>`)
}
