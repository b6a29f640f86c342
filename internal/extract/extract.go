// Package extract turns product pages into structured Products and
// tags them with the active sale rule.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/okravets/pricestalk/internal/config"
	"github.com/okravets/pricestalk/internal/fetcher"
	"github.com/okravets/pricestalk/internal/salerule"
	"github.com/okravets/pricestalk/internal/types"
)

// Fallback display values for pages missing name or brand markup.
const (
	UnnamedProduct    = "Unnamed Product"
	UnrecognizedBrand = "Unrecognized Brand"
)

// Extractor fetches and parses product pages.
type Extractor struct {
	fetcher  fetcher.Fetcher
	registry *salerule.Registry
	sel      *config.SelectorConfig
	logger   *slog.Logger
}

// New creates a product page extractor.
func New(cfg *config.Config, f fetcher.Fetcher, registry *salerule.Registry, logger *slog.Logger) *Extractor {
	return &Extractor{
		fetcher:  f,
		registry: registry,
		sel:      &cfg.Selectors,
		logger:   logger.With("component", "extract"),
	}
}

// Extract fetches url and builds a Product. It never returns an
// error: fetch and parse failures yield a product with HasError set
// and an ErrorNote naming the failure class, so the driver can report
// it instead of dropping it.
func (e *Extractor) Extract(ctx context.Context, url string) *types.Product {
	p := types.NewProduct(url)

	resp, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.logger.Error("fetch failed", "url", url, "error", err)
		return e.failed(p, types.NoteNetworkError, err.Error())
	}
	if resp.StatusCode == 404 {
		e.logger.Warn("product page not found", "url", url)
		return e.failed(p, types.NoteNotFound, fmt.Sprintf("HTTP 404 for %s", url))
	}
	if !resp.IsSuccess() {
		e.logger.Error("unexpected status", "url", url, "status", resp.StatusCode)
		return e.failed(p, types.NoteNetworkError, fmt.Sprintf("HTTP %d for %s", resp.StatusCode, url))
	}

	doc, err := resp.Document()
	if err != nil {
		e.logger.Error("document parse failed", "url", url, "error", err)
		return e.failed(p, types.NoteParseError, err.Error())
	}

	container := doc.Find(e.sel.Container).First()
	if container.Length() == 0 {
		e.logger.Error("product container not found", "url", url, "selector", e.sel.Container)
		return e.failed(p, types.NoteParseError, (&types.ParseError{
			URL: url, Selector: e.sel.Container, Err: types.ErrNoContainer,
		}).Error())
	}

	p.Name = e.textOrFallback(doc, e.sel.Name, UnnamedProduct, url)
	p.Brand = e.textOrFallback(doc, e.sel.Brand, UnrecognizedBrand, url)

	// Promo text decides which sale rule (if any) is active for the
	// whole product page.
	promo := strings.TrimSpace(doc.Find(e.sel.Promo).First().Text())
	p.ActiveRule = e.registry.Match(promo)
	if p.ActiveRule != nil {
		e.logger.Debug("sale rule active", "url", url, "trigger", p.ActiveRule.TriggerPhrase)
	}

	container.Find(e.sel.Variant).Each(func(i int, sel *goquery.Selection) {
		e.extractVariant(p, i, sel)
	})

	return p
}

func (e *Extractor) extractVariant(p *types.Product, index int, sel *goquery.Selection) {
	title := strings.TrimSpace(sel.AttrOr(e.sel.TitleAttr, ""))

	raw, ok := sel.Attr(e.sel.PriceAttr)
	price, err := strconv.Atoi(strings.TrimSpace(raw))
	if !ok || err != nil {
		// Not fatal for the rest of the page: drop this variant and
		// leave a trace on the product.
		label := title
		if label == "" {
			label = fmt.Sprintf("#%d", index+1)
		}
		p.AddNote(fmt.Sprintf("variant %s dropped: missing or invalid price", label))
		e.logger.Warn("variant dropped",
			"url", p.URL,
			"variant", label,
			"price_attr", raw,
		)
		return
	}

	region := types.RegionUA
	if sel.Find(e.sel.EUMarker).Length() > 0 {
		region = types.RegionEU
	}

	p.Variants = append(p.Variants, types.Variant{
		Title:     title,
		Region:    region,
		BasePrice: price,
	})
}

// textOrFallback returns the trimmed text of the first selector match,
// or the fallback with a logged warning when the element is missing or
// empty. A missing display field never fails the whole extraction.
func (e *Extractor) textOrFallback(doc *goquery.Document, selector, fallback, url string) string {
	text := strings.TrimSpace(doc.Find(selector).First().Text())
	if text == "" {
		e.logger.Warn("display field missing", "url", url, "selector", selector, "fallback", fallback)
		return fallback
	}
	return text
}

func (e *Extractor) failed(p *types.Product, class, detail string) *types.Product {
	p.HasError = true
	p.ErrorNote = class
	if detail != "" {
		p.AddNote(detail)
	}
	if p.Name == "" {
		p.Name = UnnamedProduct
	}
	if p.Brand == "" {
		p.Brand = UnrecognizedBrand
	}
	p.Variants = nil
	return p
}
