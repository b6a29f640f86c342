package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// normalizeColumnType lower-cases a column type for lookup.
func normalizeColumnType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// Valid report column types.
var validColumnTypes = map[string]bool{
	"brand": true, "name": true, "variant": true, "rprice": true,
	"mprice": true, "region": true, "info": true, "error": true,
	"saleformula": true,
}

// Validate checks the configuration for invalid values. Sale rules are
// validated separately when the rule registry is loaded.
func Validate(cfg *Config) error {
	if cfg.InputFile == "" {
		return fmt.Errorf("input_file must not be empty")
	}
	if cfg.OutputFile == "" {
		return fmt.Errorf("output_file must not be empty")
	}
	if cfg.RequestDelay < 0 {
		return fmt.Errorf("request_delay must be >= 0")
	}

	if err := ValidateURL(cfg.UsdURL); err != nil {
		return fmt.Errorf("usd_url: %w", err)
	}
	re, err := regexp.Compile(cfg.UsdRegex)
	if err != nil {
		return fmt.Errorf("usd_regex does not compile: %w", err)
	}
	if re.NumSubexp() != 1 {
		return fmt.Errorf("usd_regex must have exactly one capture group, got %d", re.NumSubexp())
	}

	if len(cfg.TableSettings) == 0 {
		return fmt.Errorf("xlsx_table_settings must define at least one column")
	}
	for i, col := range cfg.TableSettings {
		if !validColumnTypes[normalizeColumnType(col.Type)] {
			return fmt.Errorf("xlsx_table_settings[%d]: unknown column type %q", i, col.Type)
		}
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.Selectors.Container == "" || cfg.Selectors.Variant == "" || cfg.Selectors.PriceAttr == "" {
		return fmt.Errorf("selectors.container, selectors.variant and selectors.price_attr must not be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}

	return nil
}

// ValidateURL checks if a URL string is valid for fetching.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
