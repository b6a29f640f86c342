package extract

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/okravets/pricestalk/internal/config"
	"github.com/okravets/pricestalk/internal/salerule"
	"github.com/okravets/pricestalk/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const productHTML = `<!DOCTYPE html>
<html>
<body>
<div class="product-item">
  <span class="product-item__brand">Tom Ford</span>
  <span class="product-item__name">Bitter Peach</span>
  <div class="product-item__added-info">Акція: 1+1=3 на обрані товари</div>
  <div class="product-item__buy">
    <div class="variant" title="30 ml" data-price="900"></div>
    <div class="variant" title="50 ml" data-price="1400"><i class="eu rus"></i></div>
    <div class="variant" title="broken" data-price="n/a"></div>
    <div class="variant" data-price="700"></div>
  </div>
</div>
</body>
</html>`

const namelessHTML = `<!DOCTYPE html>
<html><body>
<div class="product-item__buy">
  <div class="variant" title="10 ml" data-price="100"></div>
</div>
</body></html>`

// fakeFetcher returns one canned response or error for every URL.
type fakeFetcher struct {
	status int
	body   string
	err    error
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*types.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &types.Response{URL: rawURL, StatusCode: f.status, Body: []byte(f.body)}, nil
}

func (f *fakeFetcher) Close() error { return nil }

func (f *fakeFetcher) Type() string { return "fake" }

func testRegistry(t *testing.T) *salerule.Registry {
	t.Helper()
	reg, err := salerule.Load([]config.SaleRuleConfig{
		{
			TextForSearch: "1+1=3",
			ApplyTo:       &config.ApplyToConfig{UA: true},
			PriceFormula:  "x*2/3",
			InfoText:      "1+1=3",
		},
	}, testLogger)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func newExtractor(t *testing.T, f *fakeFetcher) *Extractor {
	t.Helper()
	return New(config.DefaultConfig(), f, testRegistry(t), testLogger)
}

func TestExtractProduct(t *testing.T) {
	e := newExtractor(t, &fakeFetcher{status: 200, body: productHTML})
	p := e.Extract(context.Background(), "https://site/product/1")

	if p.HasError {
		t.Fatalf("unexpected error: %s (%s)", p.ErrorNote, p.Note)
	}
	if p.Name != "Bitter Peach" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Brand != "Tom Ford" {
		t.Errorf("Brand = %q", p.Brand)
	}
	if p.ActiveRule == nil || p.ActiveRule.TriggerPhrase != "1+1=3" {
		t.Error("expected the 1+1=3 rule to be active")
	}

	// The n/a-priced variant is dropped; the rest stay in page order.
	if len(p.Variants) != 3 {
		t.Fatalf("got %d variants, want 3", len(p.Variants))
	}
	v0, v1, v2 := p.Variants[0], p.Variants[1], p.Variants[2]
	if v0.Title != "30 ml" || v0.BasePrice != 900 || v0.Region != types.RegionUA {
		t.Errorf("variant 0 = %+v", v0)
	}
	if v1.Title != "50 ml" || v1.BasePrice != 1400 || v1.Region != types.RegionEU {
		t.Errorf("variant 1 = %+v", v1)
	}
	if v2.Title != "" || v2.BasePrice != 700 {
		t.Errorf("variant 2 = %+v", v2)
	}

	if !strings.Contains(p.Note, "variant broken dropped") {
		t.Errorf("Note = %q, want dropped-variant diagnostic", p.Note)
	}
}

func TestExtractFallbackNameAndBrand(t *testing.T) {
	e := newExtractor(t, &fakeFetcher{status: 200, body: namelessHTML})
	p := e.Extract(context.Background(), "https://site/product/2")

	if p.HasError {
		t.Fatalf("unexpected error: %s", p.ErrorNote)
	}
	if p.Name != UnnamedProduct {
		t.Errorf("Name = %q, want fallback", p.Name)
	}
	if p.Brand != UnrecognizedBrand {
		t.Errorf("Brand = %q, want fallback", p.Brand)
	}
	if len(p.Variants) != 1 {
		t.Errorf("got %d variants, want 1", len(p.Variants))
	}
}

func TestExtractNotFound(t *testing.T) {
	e := newExtractor(t, &fakeFetcher{status: 404, body: "gone"})
	p := e.Extract(context.Background(), "https://site/product/3")

	if !p.HasError {
		t.Fatal("expected HasError")
	}
	if p.ErrorNote != types.NoteNotFound {
		t.Errorf("ErrorNote = %q, want %q", p.ErrorNote, types.NoteNotFound)
	}
	if len(p.Variants) != 0 {
		t.Error("error products carry no variants")
	}
}

func TestExtractNetworkError(t *testing.T) {
	fetchErr := &types.FetchError{URL: "https://site/product/4", Err: errors.New("connection reset")}
	e := newExtractor(t, &fakeFetcher{err: fetchErr})
	p := e.Extract(context.Background(), "https://site/product/4")

	if !p.HasError || p.ErrorNote != types.NoteNetworkError {
		t.Errorf("ErrorNote = %q, want %q", p.ErrorNote, types.NoteNetworkError)
	}
}

func TestExtractMissingContainer(t *testing.T) {
	e := newExtractor(t, &fakeFetcher{status: 200, body: "<html><body><p>not a product page</p></body></html>"})
	p := e.Extract(context.Background(), "https://site/product/5")

	if !p.HasError || p.ErrorNote != types.NoteParseError {
		t.Errorf("ErrorNote = %q, want %q", p.ErrorNote, types.NoteParseError)
	}
}

func TestExtractNoPromoText(t *testing.T) {
	html := strings.Replace(productHTML,
		`<div class="product-item__added-info">Акція: 1+1=3 на обрані товари</div>`, "", 1)
	e := newExtractor(t, &fakeFetcher{status: 200, body: html})
	p := e.Extract(context.Background(), "https://site/product/6")

	if p.ActiveRule != nil {
		t.Error("no promo block means no active rule")
	}
}
