// Package report renders evaluated products into a formatted XLSX
// workbook. Columns, colors, and fonts come from configuration; sale
// rule colors override column colors on rows where a rule applied.
package report

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okravets/pricestalk/internal/config"
	"github.com/okravets/pricestalk/internal/hexcolor"
	"github.com/okravets/pricestalk/internal/types"
)

const (
	sheetName    = "Sheet1"
	zebraDarken  = 0.1
	errorMark    = "ERROR"
	headerSize   = 14
	headerAlign  = "center"
)

// Writer builds the output workbook row by row.
type Writer struct {
	file    *excelize.File
	cols    []ColumnSetting
	striped bool
	row     int // next sheet row to fill, 1-based
	styles  map[string]int
	logger  *slog.Logger
}

// NewWriter prepares a workbook with the configured column layout and
// a styled header row.
func NewWriter(cfg *config.Config, logger *slog.Logger) (*Writer, error) {
	w := &Writer{
		file:    excelize.NewFile(),
		striped: cfg.StripedZebra,
		row:     1,
		styles:  make(map[string]int),
		logger:  logger.With("component", "report"),
	}
	for _, c := range cfg.TableSettings {
		w.cols = append(w.cols, NewColumnSetting(c))
	}
	if err := w.writeHeader(cfg.HeadersFormat); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader(hf *config.ColumnConfig) error {
	for i, col := range w.cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column %d: %w", i+1, err)
		}
		if err := w.file.SetColWidth(sheetName, name, name, float64(col.Width)); err != nil {
			return fmt.Errorf("set width of %s: %w", name, err)
		}

		hs := headerSetting(col, hf)
		if err := w.setCell(i+1, 1, col.Header, hs); err != nil {
			return err
		}
	}
	w.row = 2
	return nil
}

// headerSetting combines a column's colors with the header font format.
func headerSetting(col ColumnSetting, hf *config.ColumnConfig) ColumnSetting {
	hs := col
	if hf != nil {
		f := NewColumnSetting(*hf)
		hs.Bold = f.Bold
		hs.Italic = f.Italic
		hs.Underline = f.Underline
		hs.FontName = f.FontName
		hs.FontSize = f.FontSize
		hs.Align = f.Align
		return hs
	}
	hs.Bold = true
	hs.Italic = true
	hs.FontSize = headerSize
	hs.Align = headerAlign
	return hs
}

// AddProduct appends one row per variant, or a single diagnostic row
// for an error product that has none.
func (w *Writer) AddProduct(p *types.Product) error {
	if len(p.Variants) == 0 {
		if !p.HasError {
			return nil
		}
		return w.addRow(p, nil)
	}
	for i := range p.Variants {
		if err := w.addRow(p, &p.Variants[i]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) addRow(p *types.Product, v *types.Variant) error {
	stripe := w.striped && (w.row-2)%2 == 0
	for i, col := range w.cols {
		cs := col
		if v != nil && v.AppliedRule != nil {
			if v.AppliedRule.BackgroundHex != "" {
				cs.Background = v.AppliedRule.BackgroundHex
			}
			if v.AppliedRule.FontHex != "" {
				cs.FontColor = v.AppliedRule.FontHex
			}
		}
		// Striping darkens whatever background the cell ended up
		// with, rule colors included.
		if stripe {
			cs.Background = hexcolor.Darken(cs.Background, zebraDarken)
		}
		if err := w.setCell(i+1, w.row, cellValue(col.Type, p, v), cs); err != nil {
			return err
		}
		if col.Type == ColName && p.URL != "" {
			cell, _ := excelize.CoordinatesToCellName(i+1, w.row)
			if err := w.file.SetCellHyperLink(sheetName, cell, p.URL, "External"); err != nil {
				w.logger.Warn("hyperlink not set", "cell", cell, "error", err)
			}
		}
	}
	w.row++
	return nil
}

func cellValue(colType string, p *types.Product, v *types.Variant) any {
	switch colType {
	case ColBrand:
		return p.Brand
	case ColName:
		return p.Name
	case ColVariant:
		if v != nil {
			return v.Title
		}
	case ColRefPrice:
		if p.RefPrice > 0 {
			return p.RefPrice
		}
	case ColMatchPrice:
		if v != nil {
			return v.FinalPrice
		}
	case ColRegion:
		if v != nil {
			return v.Region.String()
		}
	case ColInfo:
		return joinNotes(p, v)
	case ColError:
		if p.HasError {
			return errorMark
		}
	case ColSaleFormula:
		if v != nil && v.AppliedRule != nil && v.AppliedRule.Formula != nil {
			return v.AppliedRule.Formula.String()
		}
	}
	return ""
}

func joinNotes(p *types.Product, v *types.Variant) string {
	var parts []string
	if v != nil && v.Note != "" {
		parts = append(parts, v.Note)
	}
	if p.Note != "" {
		parts = append(parts, p.Note)
	}
	return strings.Join(parts, "; ")
}

// setCell writes a value with the memoized style for its format.
func (w *Writer) setCell(col, row int, value any, cs ColumnSetting) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell %d,%d: %w", col, row, err)
	}
	if err := w.file.SetCellValue(sheetName, cell, value); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	id, err := w.styleID(cs)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(sheetName, cell, cell, id); err != nil {
		return fmt.Errorf("style %s: %w", cell, err)
	}
	return nil
}

func (w *Writer) styleID(cs ColumnSetting) (int, error) {
	key := fmt.Sprintf("%s|%s|%t|%t|%t|%s|%d|%s",
		cs.Background, cs.FontColor, cs.Bold, cs.Italic, cs.Underline,
		cs.FontName, cs.FontSize, cs.Align)
	if id, ok := w.styles[key]; ok {
		return id, nil
	}

	style := &excelize.Style{
		Font: &excelize.Font{
			Bold:   cs.Bold,
			Italic: cs.Italic,
			Family: cs.FontName,
			Size:   float64(cs.FontSize),
			Color:  xlsxColor(cs.FontColor),
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{xlsxColor(cs.Background)},
		},
		Alignment: &excelize.Alignment{
			Horizontal: cs.Align,
			Vertical:   "center",
		},
	}
	if cs.Underline {
		style.Font.Underline = "single"
	}
	id, err := w.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("new style: %w", err)
	}
	w.styles[key] = id
	return id, nil
}

func xlsxColor(hex string) string {
	return strings.TrimPrefix(hex, "#")
}

// Rows reports how many data rows have been written.
func (w *Writer) Rows() int { return w.row - 2 }

// Save writes the workbook to path and releases its resources.
func (w *Writer) Save(path string) error {
	defer w.file.Close()
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	w.logger.Info("report written", "path", path, "rows", w.Rows())
	return nil
}
