package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/logging"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	write := func(title string, items []ValidationError) {
		if len(items) == 0 {
			return
		}
		builder.WriteString(title + ":\n")
		for _, item := range items {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", item.Field, item.Message))
			for _, suggestion := range item.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	write("Configuration errors", vr.Errors)
	write("Configuration warnings", vr.Warnings)

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, msg string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, msg string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

// Validate returns a config error listing every problem in cfg, or nil.
func Validate(cfg *Config) error {
	result := ValidateWithDetails(cfg)
	if !result.HasErrors() {
		return nil
	}

	first := result.Errors[0]
	return goaerrors.NewConfigError(goaerrors.CodeConfigInvalid,
		strings.TrimSpace(result.String())).WithContext("field", first.Field)
}

// ValidateWithDetails checks every section and collects errors and warnings.
func ValidateWithDetails(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	validateLogConfig(&cfg.Log, result)
	validateUpdateConfig(&cfg.Update, result)
	validateScanConfig(&cfg.Scan, result)

	return result
}

var validFormats = []string{"text", "json"}

func validateLogConfig(cfg *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(cfg.Level); err != nil {
		result.addError("log.level", cfg.Level, err.Error(), "use one of debug, info, warn, error")
	}

	if !contains(validFormats, strings.ToLower(cfg.Format)) {
		result.addError("log.format", cfg.Format, "unknown log format", "use text or json")
	}
}

func validateUpdateConfig(cfg *UpdateConfig, result *ValidationResult) {
	if cfg.Timeout <= 0 {
		result.addError("update.timeout", cfg.Timeout, "must be positive", "e.g. 5s")
	}
	if cfg.Interval <= 0 {
		result.addError("update.interval", cfg.Interval, "must be positive", "e.g. 1h")
	}

	if err := validateHTTPURL(cfg.URL); err != nil {
		result.addError("update.url", cfg.URL, err.Error())
	} else if strings.HasPrefix(cfg.URL, "http://") {
		result.addWarning("update.url", cfg.URL, "version feed is fetched over plain http", "prefer https")
	}

	// The download URL is a template; check its static prefix only.
	static := cfg.DownloadURL
	if i := strings.Index(static, "{{"); i >= 0 {
		static = static[:i]
	}
	if err := validateHTTPURL(static); err != nil {
		result.addError("update.download_url", cfg.DownloadURL, err.Error())
	}
}

func validateScanConfig(cfg *ScanConfig, result *ValidationResult) {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			result.addError("scan.exclude", pattern, "invalid glob pattern",
				"patterns use doublestar syntax, e.g. app/api/internal/**")
			continue
		}
		if strings.HasPrefix(pattern, "/") {
			result.addWarning("scan.exclude", pattern, "patterns are relative to the project root",
				"drop the leading slash")
		}
	}
}

func validateHTTPURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
