package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".goa.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
update:
  check: false
  timeout: 2s
  interval: 30m
scan:
  exclude:
    - "app/api/internal/**"
  gitignore: false
`), 0644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Update.Check)
	assert.Equal(t, 2*time.Second, cfg.Update.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Update.Interval)
	assert.Equal(t, DefaultUpdateURL, cfg.Update.URL)
	assert.Equal(t, []string{"app/api/internal/**"}, cfg.Scan.Exclude)
	assert.False(t, cfg.Scan.Gitignore)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GOA_LOG_LEVEL", "warn")
	t.Setenv("GOA_UPDATE_CHECK", "false")

	v := newViper()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Update.Check)
}

func TestLoadRejectsInvalid(t *testing.T) {
	v := newViper()
	v.Set("log.level", "loud")

	_, err := Load(v)
	require.Error(t, err)

	var ge *goaerrors.GoaError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, goaerrors.ErrorTypeConfig, ge.Type)
	assert.Equal(t, "log.level", ge.Context["field"])
	assert.Equal(t, 5, goaerrors.ExitCode(err))
}

func TestValidateWithDetails(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(*Config)
		field    string
		warnOnly bool
	}{
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format", false},
		{"zero timeout", func(c *Config) { c.Update.Timeout = 0 }, "update.timeout", false},
		{"negative interval", func(c *Config) { c.Update.Interval = -time.Second }, "update.interval", false},
		{"ftp url", func(c *Config) { c.Update.URL = "ftp://example.com/v" }, "update.url", false},
		{"empty download url", func(c *Config) { c.Update.DownloadURL = "" }, "update.download_url", false},
		{"templated host", func(c *Config) { c.Update.DownloadURL = "https://{{.Host}}/x" }, "update.download_url", false},
		{"bad glob", func(c *Config) { c.Scan.Exclude = []string{"app/["} }, "scan.exclude", false},
		{"plain http", func(c *Config) { c.Update.URL = "http://example.com/v" }, "update.url", true},
		{"absolute glob", func(c *Config) { c.Scan.Exclude = []string{"/app/**"} }, "scan.exclude", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			result := ValidateWithDetails(cfg)
			if tc.warnOnly {
				assert.False(t, result.HasErrors())
				require.True(t, result.HasWarnings())
				assert.Equal(t, tc.field, result.Warnings[0].Field)
				assert.NoError(t, Validate(cfg))
				return
			}

			require.True(t, result.HasErrors())
			assert.Equal(t, tc.field, result.Errors[0].Field)
			assert.Contains(t, result.String(), tc.field)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	result := ValidateWithDetails(Default())
	assert.False(t, result.HasErrors())
	assert.False(t, result.HasWarnings())
	assert.Empty(t, result.String())
}
