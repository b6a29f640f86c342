// Package evaluate computes final variant prices from sale rules and
// decides which variants and products make it into the report.
package evaluate

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/okravets/pricestalk/internal/types"
)

// Classification buckets for processed products.
type Classification int

const (
	ClassRegular Classification = iota
	ClassSale
	ClassError
)

func (c Classification) String() string {
	switch c {
	case ClassSale:
		return "sale"
	case ClassError:
		return "error"
	default:
		return "regular"
	}
}

// Engine applies the product's active sale rule to each variant.
type Engine struct {
	logger *slog.Logger
}

// New creates a price evaluation engine.
func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logger.With("component", "evaluate")}
}

// Evaluate computes FinalPrice, AppliedRule and Note for every variant
// of p and returns p. A formula failure is per-variant: the variant
// falls back to its base price and the rest keep processing.
func (e *Engine) Evaluate(p *types.Product) *types.Product {
	for i := range p.Variants {
		e.evaluateVariant(p, &p.Variants[i])
	}
	return p
}

func (e *Engine) evaluateVariant(p *types.Product, v *types.Variant) {
	rule := p.ActiveRule
	if rule == nil || !rule.Applies(v.Region == types.RegionEU) {
		v.FinalPrice = v.BasePrice
		v.AppliedRule = nil
		return
	}

	result, err := rule.Formula.Eval(float64(v.BasePrice))
	if err != nil {
		v.FinalPrice = v.BasePrice
		v.AppliedRule = nil
		v.Note = formulaFailureNote(rule.InfoText, rule.Formula.String())
		e.logger.Warn("sale formula failed",
			"url", p.URL,
			"variant", v.Title,
			"formula", rule.Formula.String(),
			"error", err,
		)
		return
	}

	// Formula results are float; report prices are whole currency
	// units, rounded half away from zero like the reference price.
	v.FinalPrice = int(math.Round(result))
	if v.FinalPrice != v.BasePrice {
		v.AppliedRule = rule
		v.Note = rule.InfoText
		return
	}

	// The formula was a no-op for this price; do not mark the rule.
	v.AppliedRule = nil
}

func formulaFailureNote(infoText, formula string) string {
	note := fmt.Sprintf("Error applying sale formula '%s'", formula)
	if infoText != "" {
		note = infoText + ", but " + note
	}
	return note
}

// Include decides whether a variant belongs in the report. In full
// mode everything is kept; otherwise the final price must undercut the
// reference price and the title filter (when given) must match.
func Include(v *types.Variant, refPrice int, titleFilter string, full bool) bool {
	if full {
		return true
	}
	if v.FinalPrice >= refPrice {
		return false
	}
	return titleFilter == "" || strings.Contains(v.Title, titleFilter)
}

// FilterVariants returns the variants of p passing Include, in order.
func FilterVariants(p *types.Product, titleFilter string, full bool) []types.Variant {
	kept := make([]types.Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		if Include(&v, p.RefPrice, titleFilter, full) {
			kept = append(kept, v)
		}
	}
	return kept
}

// Classify buckets a product after filtering. Errors win over price
// outcome; a product is on sale when at least one remaining variant
// carries an applied rule.
func Classify(p *types.Product) Classification {
	if p.HasError {
		return ClassError
	}
	for i := range p.Variants {
		if p.Variants[i].AppliedRule != nil {
			return ClassSale
		}
	}
	return ClassRegular
}
