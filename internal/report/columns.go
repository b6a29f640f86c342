package report

import (
	"strings"

	"github.com/okravets/pricestalk/internal/config"
	"github.com/okravets/pricestalk/internal/hexcolor"
)

// Column type identifiers accepted in xlsx_table_settings.
const (
	ColBrand       = "brand"
	ColName        = "name"
	ColVariant     = "variant"
	ColRefPrice    = "rprice"
	ColMatchPrice  = "mprice"
	ColRegion      = "region"
	ColInfo        = "info"
	ColError       = "error"
	ColSaleFormula = "saleformula"
)

const (
	defaultColumnWidth = 30
	defaultBackground  = "#FFFFFF"
	defaultFontColor   = "#000000"
	defaultFontName    = "Arial"
	defaultFontSize    = 10
	defaultAlign       = "left"
)

// ColumnSetting is a column configuration with all defaults filled in.
type ColumnSetting struct {
	Type       string
	Width      int
	Header     string
	Background string
	FontColor  string
	Bold       bool
	Italic     bool
	Underline  bool
	FontName   string
	FontSize   int
	Align      string
}

var validAligns = map[string]bool{
	"left":    true,
	"center":  true,
	"right":   true,
	"justify": true,
}

// NewColumnSetting normalizes a configured column, substituting
// defaults for every field left unset.
func NewColumnSetting(c config.ColumnConfig) ColumnSetting {
	s := ColumnSetting{
		Type:       strings.ToLower(strings.TrimSpace(c.Type)),
		Width:      c.Width,
		Header:     c.Header,
		Background: hexcolor.Normalize(c.BackgroundColor),
		FontColor:  hexcolor.Normalize(c.FontColor),
		Bold:       c.Bold,
		Italic:     c.Italic,
		Underline:  c.Underline,
		FontName:   c.FontName,
		FontSize:   c.FontSize,
		Align:      strings.ToLower(strings.TrimSpace(c.Align)),
	}
	if s.Width <= 0 {
		s.Width = defaultColumnWidth
	}
	if s.Header == "" {
		s.Header = titleCase(s.Type)
	}
	if s.Background == "" {
		s.Background = defaultBackground
	}
	if s.FontColor == "" {
		s.FontColor = defaultFontColor
	}
	if s.FontName == "" {
		s.FontName = defaultFontName
	}
	if s.FontSize <= 0 {
		s.FontSize = defaultFontSize
	}
	if !validAligns[s.Align] {
		s.Align = defaultAlign
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
