// Package runner drives a full scan: read the product list, fetch the
// USD rate, walk every product page, evaluate sale rules, and write
// the XLSX report.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/okravets/pricestalk/internal/config"
	"github.com/okravets/pricestalk/internal/currency"
	"github.com/okravets/pricestalk/internal/evaluate"
	"github.com/okravets/pricestalk/internal/extract"
	"github.com/okravets/pricestalk/internal/fetcher"
	"github.com/okravets/pricestalk/internal/input"
	"github.com/okravets/pricestalk/internal/report"
	"github.com/okravets/pricestalk/internal/salerule"
	"github.com/okravets/pricestalk/internal/types"
)

// Options adjusts a run beyond what the config file carries.
type Options struct {
	// Full emits every variant, skipping the price and title filter.
	Full bool
}

// Runner owns the components of one scan.
type Runner struct {
	cfg       *config.Config
	fetcher   fetcher.Fetcher
	currency  *currency.Client
	extractor *extract.Extractor
	engine    *evaluate.Engine
	opts      Options
	logger    *slog.Logger
}

// New wires a Runner from config. The caller should Close it.
func New(cfg *config.Config, opts Options, logger *slog.Logger) (*Runner, error) {
	registry, err := salerule.Load(cfg.SaleList, logger)
	if err != nil {
		return nil, fmt.Errorf("load sale rules: %w", err)
	}
	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	cur, err := currency.New(cfg, f, logger)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Runner{
		cfg:       cfg,
		fetcher:   f,
		currency:  cur,
		extractor: extract.New(cfg, f, registry, logger),
		engine:    evaluate.New(logger),
		opts:      opts,
		logger:    logger.With("component", "runner"),
	}, nil
}

// Close releases the fetcher.
func (r *Runner) Close() error {
	return r.fetcher.Close()
}

// Run executes the scan end to end and writes the report.
func (r *Runner) Run(ctx context.Context) error {
	rows, err := input.ReadFile(r.cfg.InputFile, r.logger)
	if err != nil {
		return err
	}
	r.logger.Info("product list loaded", "file", r.cfg.InputFile, "rows", len(rows))

	rate, err := r.currency.Rate(ctx)
	if err != nil {
		return fmt.Errorf("usd rate: %w", err)
	}
	r.logger.Info("usd rate fetched", "rate", rate)

	var sale, regular, failed []*types.Product
	for _, row := range rows {
		refPrice, err := input.ResolveRefPrice(row, rate)
		if err != nil {
			r.logger.Warn("row skipped", "line", row.Line, "url", row.URL, "error", err)
			continue
		}

		if err := r.sleep(ctx); err != nil {
			return err
		}

		p := r.extractor.Extract(ctx, row.URL)
		p.RefPrice = refPrice
		if p.HasError {
			failed = append(failed, p)
			continue
		}
		if len(p.Variants) == 0 {
			r.logger.Warn("no variants on page", "url", row.URL)
			continue
		}

		r.engine.Evaluate(p)
		p.Variants = evaluate.FilterVariants(p, row.TitleFilter, r.opts.Full)
		if len(p.Variants) == 0 {
			r.logger.Debug("all variants filtered out", "url", row.URL)
			continue
		}

		switch evaluate.Classify(p) {
		case evaluate.ClassSale:
			sale = append(sale, p)
		case evaluate.ClassError:
			failed = append(failed, p)
		default:
			regular = append(regular, p)
		}
	}

	if err := r.write(sale, regular, failed); err != nil {
		return err
	}

	r.logger.Info("scan finished",
		"sale", len(sale), "regular", len(regular), "errors", len(failed))
	if len(sale)+len(regular)+len(failed) == 0 {
		r.logger.Info("no products passed the filters, report is header only")
	}
	return nil
}

// sleep waits out the configured request delay, honoring cancellation.
func (r *Runner) sleep(ctx context.Context) error {
	if r.cfg.RequestDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(r.cfg.RequestDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Runner) write(buckets ...[]*types.Product) error {
	w, err := report.NewWriter(r.cfg, r.logger)
	if err != nil {
		return err
	}
	for _, bucket := range buckets {
		for _, p := range bucket {
			if err := w.AddProduct(p); err != nil {
				return err
			}
		}
	}
	return w.Save(r.cfg.OutputFile)
}
