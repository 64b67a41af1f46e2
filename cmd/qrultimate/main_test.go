package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"qrultimate"}, args...))
	return out.String(), err
}

func TestRenderClassicThenScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classic.png")

	_, err := run(t, "render", "--mode", "classic", "--url", "https://cli.example", "--margin", "20", "--out", path, "--verify")
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	img, err := png.Decode(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	out, err := run(t, "scan", path)
	require.NoError(t, err)
	assert.Equal(t, "https://cli.example", strings.TrimSpace(out))
}

func TestRenderProSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pro.svg")

	_, err := run(t, "render", "--module", "dots", "--corner", "dot", "--format", "svg", "--size", "600", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `width="600"`)
}

func TestRenderRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"render", "--mode", "fancy"},
		{"render", "--level", "Z"},
		{"render", "--margin", "3"},
		{"render", "--mode", "classic", "--format", "svg"},
		{"render", "--logo", filepath.Join(dir, "missing.png")},
	} {
		_, err := run(t, append(args, "--out", filepath.Join(dir, "x"))...)
		assert.Error(t, err, args)
	}
}

func TestScanNeedsOnePath(t *testing.T) {
	_, err := run(t, "scan")
	assert.Error(t, err)
}

func TestRenderTerminalNeedsFileOutput(t *testing.T) {
	_, err := run(t, "render", "--terminal", "--out", "-")
	assert.ErrorIs(t, err, errTerminalOnStdout)
}

func TestPrintTerminalRejectsUnknownLevel(t *testing.T) {
	s := settings.Pro()
	s.Level = settings.Level(9)
	assert.ErrorIs(t, printTerminal(s), settings.ErrUnknownValue)
}
