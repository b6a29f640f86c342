package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flag overrides are applied by the caller on the returned Config.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("json")

	setDefaults(v, cfg)

	// Environment variable support
	v.SetEnvPrefix("PRICESTALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search default locations
		v.SetConfigName("pricestalk")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".pricestalk"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("input_file", cfg.InputFile)
	v.SetDefault("output_file", cfg.OutputFile)
	v.SetDefault("request_delay", cfg.RequestDelay)
	v.SetDefault("usd_url", cfg.UsdURL)
	v.SetDefault("usd_regex", cfg.UsdRegex)
	v.SetDefault("striped_zebra", cfg.StripedZebra)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)

	v.SetDefault("selectors.container", cfg.Selectors.Container)
	v.SetDefault("selectors.name", cfg.Selectors.Name)
	v.SetDefault("selectors.brand", cfg.Selectors.Brand)
	v.SetDefault("selectors.promo", cfg.Selectors.Promo)
	v.SetDefault("selectors.variant", cfg.Selectors.Variant)
	v.SetDefault("selectors.title_attr", cfg.Selectors.TitleAttr)
	v.SetDefault("selectors.price_attr", cfg.Selectors.PriceAttr)
	v.SetDefault("selectors.eu_marker", cfg.Selectors.EUMarker)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
}
