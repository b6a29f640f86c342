// Package currency scrapes the USD to local-currency conversion rate
// from an exchange-listing page.
package currency

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/okravets/pricestalk/internal/config"
	"github.com/okravets/pricestalk/internal/fetcher"
	"github.com/okravets/pricestalk/internal/types"
)

// Client fetches the exchange page and extracts the USD rate with a
// configured regular expression. The rate page embeds quotes in inline
// script blocks, so scripts are scanned last-to-first before falling
// back to the raw document text.
type Client struct {
	fetcher fetcher.Fetcher
	url     string
	re      *regexp.Regexp
	logger  *slog.Logger
}

// New creates a rate client. The pattern must compile and contain
// exactly one capture group yielding the rate.
func New(cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) (*Client, error) {
	re, err := regexp.Compile(cfg.UsdRegex)
	if err != nil {
		return nil, &config.Error{Field: "usd_regex", Err: err}
	}
	if re.NumSubexp() != 1 {
		return nil, &config.Error{Field: "usd_regex", Err: fmt.Errorf("expected exactly one capture group, got %d", re.NumSubexp())}
	}
	return &Client{
		fetcher: f,
		url:     cfg.UsdURL,
		re:      re,
		logger:  logger.With("component", "currency"),
	}, nil
}

// Rate fetches and extracts the USD rate. Any failure here is fatal to
// the run; the caller aborts rather than scanning with no reference.
func (c *Client) Rate(ctx context.Context) (float64, error) {
	resp, err := c.fetcher.Fetch(ctx, c.url)
	if err != nil {
		return 0, fmt.Errorf("fetch rate page: %w", err)
	}
	if !resp.IsSuccess() {
		return 0, &types.FetchError{URL: c.url, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}
	if len(resp.Body) == 0 {
		return 0, types.ErrEmptyResponse
	}

	doc, err := htmlquery.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return 0, &types.ParseError{URL: c.url, Err: err}
	}

	rate, ok := c.scanScripts(doc)
	if !ok {
		// Some mirrors inline the quote outside script tags.
		rate, ok = c.extract(string(resp.Body))
	}
	if !ok {
		return 0, types.ErrNoRate
	}

	c.logger.Info("USD rate fetched", "rate", rate, "url", c.url)
	return rate, nil
}

// scanScripts walks //script nodes from last to first, matching the
// rate pattern against each script's text.
func (c *Client) scanScripts(doc *html.Node) (float64, bool) {
	scripts := htmlquery.Find(doc, "//script")
	for i := len(scripts) - 1; i >= 0; i-- {
		if rate, ok := c.extract(htmlquery.InnerText(scripts[i])); ok {
			return rate, true
		}
	}
	return 0, false
}

func (c *Client) extract(text string) (float64, bool) {
	m := c.re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		c.logger.Warn("rate capture is not numeric", "capture", m[1])
		return 0, false
	}
	return rate, true
}
