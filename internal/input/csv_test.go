package input

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/okravets/pricestalk/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestRead(t *testing.T) {
	const data = `https://site/a;30 ml;10;
https://site/b;;;450

https://site/c
https://site/d;filter;2,5;100;extra;columns
`
	rows, err := Read(strings.NewReader(data), testLogger)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}

	want := []types.InputRow{
		{URL: "https://site/a", TitleFilter: "30 ml", RefPriceUSD: "10", Line: 1},
		{URL: "https://site/b", RefPriceUAH: "450", Line: 2},
		{URL: "https://site/c", Line: 4},
		{URL: "https://site/d", TitleFilter: "filter", RefPriceUSD: "2,5", RefPriceUAH: "100", Line: 5},
	}
	for i, w := range want {
		if rows[i] != w {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], w)
		}
	}
}

func TestReadLineNumbersAfterBlankLine(t *testing.T) {
	rows, err := Read(strings.NewReader("https://site/a\n\nhttps://site/b\n"), testLogger)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Line != 1 || rows[1].Line != 3 {
		t.Errorf("lines = %d, %d, want 1, 3", rows[0].Line, rows[1].Line)
	}
}

func TestReadEmpty(t *testing.T) {
	rows, err := Read(strings.NewReader(""), testLogger)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestResolveRefPrice(t *testing.T) {
	tests := []struct {
		name string
		row  types.InputRow
		rate float64
		want int
	}{
		{"usd converted", types.InputRow{RefPriceUSD: "10"}, 41.5, 415},
		{"usd rounded", types.InputRow{RefPriceUSD: "10,5"}, 41.5, 436},
		{"usd wins over uah", types.InputRow{RefPriceUSD: "10", RefPriceUAH: "999"}, 41.5, 415},
		{"uah direct", types.InputRow{RefPriceUAH: "450"}, 41.5, 450},
		{"uah comma decimal truncated", types.InputRow{RefPriceUAH: "450,9"}, 41.5, 450},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRefPrice(tt.row, tt.rate)
			if err != nil {
				t.Fatalf("ResolveRefPrice: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveRefPriceErrors(t *testing.T) {
	if _, err := ResolveRefPrice(types.InputRow{}, 41.5); !errors.Is(err, ErrNoRefPrice) {
		t.Errorf("empty row: got %v, want ErrNoRefPrice", err)
	}
	if _, err := ResolveRefPrice(types.InputRow{RefPriceUSD: "ten"}, 41.5); !errors.Is(err, ErrBadRefPrice) {
		t.Errorf("bad usd: got %v, want ErrBadRefPrice", err)
	}
	if _, err := ResolveRefPrice(types.InputRow{RefPriceUAH: "-"}, 41.5); !errors.Is(err, ErrBadRefPrice) {
		t.Errorf("bad uah: got %v, want ErrBadRefPrice", err)
	}
}
