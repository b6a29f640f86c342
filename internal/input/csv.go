// Package input reads the product list the tool walks through.
//
// The list is a semicolon separated file with up to four columns per
// line: product URL, variant title filter, reference price in USD and
// reference price in UAH. Only the URL is mandatory.
package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/okravets/pricestalk/internal/types"
)

// Sentinel errors surfaced by ResolveRefPrice.
var (
	ErrNoRefPrice  = fmt.Errorf("no reference price in row")
	ErrBadRefPrice = fmt.Errorf("unparseable reference price")
)

// ReadFile loads the product list from path.
func ReadFile(path string, logger *slog.Logger) ([]types.InputRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()
	return Read(f, logger)
}

// Read parses the product list from r. Blank lines are skipped, short
// rows are padded with empty columns, extra columns are ignored.
func Read(r io.Reader, logger *slog.Logger) ([]types.InputRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []types.InputRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		// The csv reader skips blank lines, so the file line has to
		// come from the reader, not from a record counter.
		line, _ := cr.FieldPos(0)

		for len(record) < 4 {
			record = append(record, "")
		}
		url := strings.TrimSpace(record[0])
		if url == "" {
			logger.Debug("skipping blank input line", "line", line)
			continue
		}

		rows = append(rows, types.InputRow{
			URL:         url,
			TitleFilter: strings.TrimSpace(record[1]),
			RefPriceUSD: strings.TrimSpace(record[2]),
			RefPriceUAH: strings.TrimSpace(record[3]),
			Line:        line,
		})
	}
	return rows, nil
}

// ResolveRefPrice turns a row's reference price columns into a UAH
// amount. A USD price wins over a UAH one and is converted with rate;
// comma decimal separators are accepted in either column.
func ResolveRefPrice(row types.InputRow, rate float64) (int, error) {
	if row.RefPriceUSD != "" {
		usd, err := parsePrice(row.RefPriceUSD)
		if err != nil {
			return 0, fmt.Errorf("%w: usd %q", ErrBadRefPrice, row.RefPriceUSD)
		}
		return int(math.Round(usd * rate)), nil
	}
	if row.RefPriceUAH != "" {
		uah, err := parsePrice(row.RefPriceUAH)
		if err != nil {
			return 0, fmt.Errorf("%w: uah %q", ErrBadRefPrice, row.RefPriceUAH)
		}
		return int(uah), nil
	}
	return 0, ErrNoRefPrice
}

func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}
