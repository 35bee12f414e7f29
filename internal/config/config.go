// Package config loads the CLI's own settings using Viper: defaults, a
// .goa.yml file, GOA_* environment variables and command-line flags, in
// increasing precedence.
//
// These settings tune logging, the update check and the scanner. The
// project's config.json is a different file and is read by package project.
package config

import (
	"strings"
	"time"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. GOA_LOG_LEVEL.
const EnvPrefix = "GOA"

// EnvKeyReplacer maps nested keys to variable names: update.download_url
// becomes GOA_UPDATE_DOWNLOAD_URL.
var EnvKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// Config holds the CLI settings.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Update UpdateConfig `mapstructure:"update"`
	Scan   ScanConfig   `mapstructure:"scan"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type UpdateConfig struct {
	Check bool   `mapstructure:"check"`
	URL   string `mapstructure:"url"`
	// DownloadURL is a text/template expanded with .Version, .OS, .Arch and .Ext.
	DownloadURL string        `mapstructure:"download_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Interval    time.Duration `mapstructure:"interval"`
}

type ScanConfig struct {
	// Exclude holds doublestar patterns relative to the project root.
	Exclude   []string `mapstructure:"exclude"`
	Gitignore bool     `mapstructure:"gitignore"`
}

// Defaults.
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultUpdateURL   = "https://re.juliaklee.wtf/goa-cli/version"
	DefaultDownloadURL = "https://github.com/kleeedolinux/goa-cli/releases/latest/download/goa_{{.OS}}_{{.Arch}}{{.Ext}}"
	DefaultTimeout     = 5 * time.Second
	DefaultInterval    = time.Hour
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("update.check", true)
	v.SetDefault("update.url", DefaultUpdateURL)
	v.SetDefault("update.download_url", DefaultDownloadURL)
	v.SetDefault("update.timeout", DefaultTimeout)
	v.SetDefault("update.interval", DefaultInterval)
	v.SetDefault("scan.exclude", []string{})
	v.SetDefault("scan.gitignore", true)
}

// Load unmarshals and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, goaerrors.WrapConfig(err, goaerrors.CodeConfigInvalid, "failed to decode configuration")
	}

	// Slices set through GOA_SCAN_EXCLUDE arrive as one space separated string.
	if v.IsSet("scan.exclude") && len(cfg.Scan.Exclude) == 0 {
		cfg.Scan.Exclude = v.GetStringSlice("scan.exclude")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Update: UpdateConfig{
			Check:       true,
			URL:         DefaultUpdateURL,
			DownloadURL: DefaultDownloadURL,
			Timeout:     DefaultTimeout,
			Interval:    DefaultInterval,
		},
		Scan: ScanConfig{Exclude: []string{}, Gitignore: true},
	}
}
