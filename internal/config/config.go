package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for pricestalk.
type Config struct {
	InputFile  string `mapstructure:"input_file"  json:"input_file"`
	OutputFile string `mapstructure:"output_file" json:"output_file"`

	// RequestDelay is the fixed pause before every product-page fetch.
	RequestDelay time.Duration `mapstructure:"request_delay" json:"request_delay"`

	// UsdURL is the page the USD rate is scraped from; UsdRegex must
	// contain exactly one capture group yielding the rate.
	UsdURL   string `mapstructure:"usd_url"   json:"usd_url"`
	UsdRegex string `mapstructure:"usd_regex" json:"usd_regex"`

	// SaleList holds the sale rules in significant order: the first
	// rule whose trigger phrase matches the page wins.
	SaleList []SaleRuleConfig `mapstructure:"sale_list" json:"sale_list"`

	// TableSettings defines the report columns, in output order.
	TableSettings []ColumnConfig `mapstructure:"xlsx_table_settings" json:"xlsx_table_settings"`

	// HeadersFormat overrides the header-row formatting.
	HeadersFormat *ColumnConfig `mapstructure:"headers_format" json:"headers_format,omitempty"`

	// StripedZebra darkens the background of every other data row.
	StripedZebra bool `mapstructure:"striped_zebra" json:"striped_zebra"`

	Fetcher   FetcherConfig  `mapstructure:"fetcher"   json:"fetcher"`
	Selectors SelectorConfig `mapstructure:"selectors" json:"selectors"`
	Logging   LoggingConfig  `mapstructure:"logging"   json:"logging"`
}

// SaleRuleConfig is one entry of sale_list.
type SaleRuleConfig struct {
	TextForSearch           string         `mapstructure:"text_for_search" json:"text_for_search"`
	ApplyTo                 *ApplyToConfig `mapstructure:"apply_to" json:"apply_to"`
	PriceFormula            string         `mapstructure:"price_formula" json:"price_formula"`
	InfoText                string         `mapstructure:"info_text" json:"info_text,omitempty"`
	PriceBackgroundColorHex string         `mapstructure:"price_background_color_hex" json:"price_background_color_hex,omitempty"`
	PriceFontColorHex       string         `mapstructure:"price_font_color_hex" json:"price_font_color_hex,omitempty"`
}

// ApplyToConfig flags which regions a sale rule may adjust.
type ApplyToConfig struct {
	UA bool `mapstructure:"ua" json:"ua"`
	EU bool `mapstructure:"eu" json:"eu"`
}

// ColumnConfig is one entry of xlsx_table_settings.
type ColumnConfig struct {
	Type            string `mapstructure:"type" json:"type"`
	Width           int    `mapstructure:"width" json:"width"`
	Header          string `mapstructure:"header" json:"header"`
	BackgroundColor string `mapstructure:"background_color" json:"background_color,omitempty"`
	FontColor       string `mapstructure:"font_color" json:"font_color,omitempty"`
	Bold            bool   `mapstructure:"bold" json:"bold"`
	Italic          bool   `mapstructure:"italic" json:"italic"`
	Underline       bool   `mapstructure:"underline" json:"underline"`
	FontName        string `mapstructure:"font_name" json:"font_name,omitempty"`
	FontSize        int    `mapstructure:"font_size" json:"font_size,omitempty"`
	Align           string `mapstructure:"align" json:"align,omitempty"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	// Type selects the fetcher implementation: "http" or "browser".
	Type            string        `mapstructure:"type" json:"type"`
	UserAgent       string        `mapstructure:"user_agent" json:"user_agent"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" json:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects" json:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects" json:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size" json:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure" json:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" json:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" json:"max_idle_conns"`

	// Stealth applies anti-automation patches to the browser fetcher.
	Stealth bool `mapstructure:"stealth" json:"stealth"`
}

// SelectorConfig holds the CSS selectors used to locate product data.
// Defaults target the supported e-commerce site.
type SelectorConfig struct {
	Container string `mapstructure:"container" json:"container"`
	Name      string `mapstructure:"name" json:"name"`
	Brand     string `mapstructure:"brand" json:"brand"`
	Promo     string `mapstructure:"promo" json:"promo"`
	Variant   string `mapstructure:"variant" json:"variant"`
	TitleAttr string `mapstructure:"title_attr" json:"title_attr"`
	PriceAttr string `mapstructure:"price_attr" json:"price_attr"`
	EUMarker  string `mapstructure:"eu_marker" json:"eu_marker"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `mapstructure:"level" json:"level"`
	File  string `mapstructure:"file" json:"file,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		InputFile:    "input_table.csv",
		OutputFile:   "out_table.xlsx",
		RequestDelay: 3 * time.Second,
		UsdURL:       "https://obmennovosti.info/city.php?city=45",
		UsdRegex:     `"USD","quoted":"UAH","bid":"([\d.]+)","ask"`,
		TableSettings: []ColumnConfig{
			{Type: "Brand", Width: 20, Header: "Brand", Bold: true},
			{Type: "Name", Width: 35, Header: "Product"},
			{Type: "Variant", Width: 20, Header: "Variant"},
			{Type: "RPrice", Width: 8, Header: "Ref", Italic: true},
			{Type: "MPrice", Width: 8, Header: "Price"},
			{Type: "Region", Width: 5, Header: "Stock"},
			{Type: "Info", Width: 40, Header: "Info"},
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout:  30 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
		},
		Selectors: SelectorConfig{
			Container: "div.product-item__buy",
			Name:      "span.product-item__name",
			Brand:     "span.product-item__brand",
			Promo:     "div.product-item__added-info",
			Variant:   "div.variant",
			TitleAttr: "title",
			PriceAttr: "data-price",
			EUMarker:  "i.eu.rus",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
