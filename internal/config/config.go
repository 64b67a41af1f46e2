// Package config loads runtime settings from an optional config.yaml and the
// environment.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/cristianadrielbraun/qrultimate/internal/studio"
)

// EnvPrefix prefixes every environment override, e.g. QRULTIMATE_EXPORT_VERIFY.
const EnvPrefix = "QRULTIMATE"

// DefaultAddr is used when neither server.addr nor PORT is set.
const DefaultAddr = ":8080"

type Config struct {
	Addr            string
	PublicURL       string
	Production      bool
	StaticDir       string
	SessionCapacity int
	SessionTTL      time.Duration
	DownloadTTL     time.Duration
	UploadLimit     int64
	SettleDelay     time.Duration
	ExportSizes     []int
	Verify          bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.production", false)
	v.SetDefault("server.static-dir", "web/static")
	v.SetDefault("session.capacity", 1000)
	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("download.ttl", 10*time.Minute)
	v.SetDefault("upload.limit", 5<<20)
	v.SetDefault("export.settle-delay", 100*time.Millisecond)
	v.SetDefault("export.sizes", []int{1000, 2000})
	v.SetDefault("export.verify", false)
}

// Load reads path, or ./config.yaml when path is empty. A missing default
// file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// PaaS platforms hand the listen port over in PORT.
	if err := v.BindEnv("server.port", "PORT"); err != nil {
		return nil, errors.Wrap(err, "bind PORT")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	cfg := &Config{
		Addr:            v.GetString("server.addr"),
		PublicURL:       v.GetString("server.public-url"),
		Production:      v.GetBool("server.production"),
		StaticDir:       v.GetString("server.static-dir"),
		SessionCapacity: v.GetInt("session.capacity"),
		SessionTTL:      v.GetDuration("session.ttl"),
		DownloadTTL:     v.GetDuration("download.ttl"),
		UploadLimit:     v.GetInt64("upload.limit"),
		SettleDelay:     v.GetDuration("export.settle-delay"),
		ExportSizes:     v.GetIntSlice("export.sizes"),
		Verify:          v.GetBool("export.verify"),
	}
	// An explicit server.addr wins over PORT.
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
		if port := v.GetString("server.port"); port != "" {
			cfg.Addr = ":" + port
		}
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("config: server.addr is empty")
	case c.SessionCapacity < 1:
		return errors.Errorf("config: session.capacity %d < 1", c.SessionCapacity)
	case c.UploadLimit < 1:
		return errors.Errorf("config: upload.limit %d < 1", c.UploadLimit)
	case len(c.ExportSizes) == 0:
		return errors.New("config: export.sizes is empty")
	}
	for _, s := range c.ExportSizes {
		if s <= 0 {
			return errors.Errorf("config: export size %d", s)
		}
	}
	return nil
}

// Studio returns the controller settings.
func (c *Config) Studio() studio.Config {
	return studio.Config{
		SettleDelay: c.SettleDelay,
		ExportSizes: c.ExportSizes,
		Verify:      c.Verify,
	}
}
