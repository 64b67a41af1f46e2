package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, []int{1000, 2000}, cfg.ExportSizes)
	assert.Equal(t, 100*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, int64(5<<20), cfg.UploadLimit)
	assert.False(t, cfg.Production)

	sc := cfg.Studio()
	assert.Equal(t, cfg.ExportSizes, sc.ExportSizes)
	assert.Equal(t, cfg.SettleDelay, sc.SettleDelay)
}

func TestLoadHonorsPort(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("QRULTIMATE_EXPORT_VERIFY", "true")
	t.Setenv("QRULTIMATE_SESSION_CAPACITY", "12")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Verify)
	assert.Equal(t, 12, cfg.SessionCapacity)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: "127.0.0.1:7000"
  production: true
  public-url: https://qr.example
export:
  settle-delay: 250ms
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.True(t, cfg.Production)
	assert.Equal(t, "https://qr.example", cfg.PublicURL)
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Addr: ":1", SessionCapacity: 1, UploadLimit: 1, ExportSizes: []int{0}}
	assert.Error(t, cfg.Validate())

	cfg.ExportSizes = []int{1000}
	assert.NoError(t, cfg.Validate())
}
