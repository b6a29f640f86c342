package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// No config file anywhere near a temp working directory.
	cfg := DefaultConfig()
	if cfg.RequestDelay != 3*time.Second {
		t.Errorf("RequestDelay = %v", cfg.RequestDelay)
	}
	if cfg.Fetcher.Type != "http" {
		t.Errorf("Fetcher.Type = %q", cfg.Fetcher.Type)
	}
	if len(cfg.TableSettings) == 0 {
		t.Error("default table settings are empty")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	const fileCfg = `{
  "input_file": "list.csv",
  "request_delay": "5s",
  "sale_list": [
    {
      "text_for_search": "1+1=3",
      "apply_to": { "ua": true },
      "price_formula": "x*2/3"
    }
  ],
  "fetcher": { "type": "browser" },
  "logging": { "level": "debug" }
}`
	path := filepath.Join(t.TempDir(), "pricestalk.json")
	if err := os.WriteFile(path, []byte(fileCfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InputFile != "list.csv" {
		t.Errorf("InputFile = %q", cfg.InputFile)
	}
	if cfg.RequestDelay != 5*time.Second {
		t.Errorf("RequestDelay = %v", cfg.RequestDelay)
	}
	if cfg.Fetcher.Type != "browser" {
		t.Errorf("Fetcher.Type = %q", cfg.Fetcher.Type)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if len(cfg.SaleList) != 1 || cfg.SaleList[0].TextForSearch != "1+1=3" {
		t.Errorf("SaleList = %+v", cfg.SaleList)
	}

	// Untouched keys keep their defaults.
	if cfg.OutputFile != "out_table.xlsx" {
		t.Errorf("OutputFile = %q", cfg.OutputFile)
	}
	if cfg.Selectors.Container == "" {
		t.Error("selectors lost their defaults")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected an error for an explicit missing config path")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty input", func(c *Config) { c.InputFile = "" }, "input_file"},
		{"empty output", func(c *Config) { c.OutputFile = "" }, "output_file"},
		{"negative delay", func(c *Config) { c.RequestDelay = -time.Second }, "request_delay"},
		{"bad usd url", func(c *Config) { c.UsdURL = "ftp://x" }, "usd_url"},
		{"bad usd regex", func(c *Config) { c.UsdRegex = "([" }, "usd_regex"},
		{"regex without group", func(c *Config) { c.UsdRegex = `\d+` }, "usd_regex"},
		{"no columns", func(c *Config) { c.TableSettings = nil }, "xlsx_table_settings"},
		{"unknown column", func(c *Config) { c.TableSettings[0].Type = "discount" }, "column type"},
		{"bad fetcher", func(c *Config) { c.Fetcher.Type = "carrier-pigeon" }, "fetcher.type"},
		{"zero timeout", func(c *Config) { c.Fetcher.RequestTimeout = 0 }, "request_timeout"},
		{"empty container", func(c *Config) { c.Selectors.Container = "" }, "selectors"},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://example.com/page"); err != nil {
		t.Errorf("valid URL rejected: %v", err)
	}
	for _, bad := range []string{"", "example.com", "file:///etc/passwd", "https://"} {
		if err := ValidateURL(bad); err == nil {
			t.Errorf("ValidateURL(%q) accepted", bad)
		}
	}
}
