// Package salerule holds the configured sale rules and the restricted
// expression engine their price formulas are evaluated with.
package salerule

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/okravets/pricestalk/internal/config"
	"github.com/okravets/pricestalk/internal/hexcolor"
)

// Rule is one configured site promotion: a trigger phrase searched for
// in page promo text plus a price-adjustment formula. Rules are
// immutable once loaded.
type Rule struct {
	// TriggerPhrase is the substring searched for in promo text.
	TriggerPhrase string

	// AppliesUA / AppliesEU flag which regions the formula may adjust.
	AppliesUA bool
	AppliesEU bool

	// Formula is the compiled price-adjustment expression.
	Formula *Formula

	// InfoText is shown in reports when the rule fires.
	InfoText string

	// BackgroundHex / FontHex are display colors, normalized to
	// "#RRGGBB" or empty when invalid/absent.
	BackgroundHex string
	FontHex       string
}

// Applies reports whether the rule may adjust prices for the given
// stock (eu true for EU stock, false for UA).
func (r *Rule) Applies(eu bool) bool {
	if eu {
		return r.AppliesEU
	}
	return r.AppliesUA
}

// Registry holds sale rules in configuration order. Order is
// significant: Match returns the first rule whose trigger phrase
// occurs in the given text.
type Registry struct {
	rules  []*Rule
	logger *slog.Logger
}

// Load builds a Registry from configuration. Each rule must carry a
// trigger phrase, an apply_to block and a formula that compiles;
// anything else fails loading.
func Load(ruleCfgs []config.SaleRuleConfig, logger *slog.Logger) (*Registry, error) {
	r := &Registry{
		rules:  make([]*Rule, 0, len(ruleCfgs)),
		logger: logger.With("component", "salerule_registry"),
	}
	for i, rc := range ruleCfgs {
		rule, err := buildRule(i, rc)
		if err != nil {
			return nil, err
		}
		r.rules = append(r.rules, rule)
	}
	r.logger.Debug("sale rules loaded", "count", len(r.rules))
	return r, nil
}

func buildRule(index int, rc config.SaleRuleConfig) (*Rule, error) {
	field := func(name string) string {
		return fmt.Sprintf("sale_list[%d].%s", index, name)
	}
	if strings.TrimSpace(rc.TextForSearch) == "" {
		return nil, &config.Error{Field: field("text_for_search"), Err: fmt.Errorf("missing trigger phrase")}
	}
	if rc.ApplyTo == nil {
		return nil, &config.Error{Field: field("apply_to"), Err: fmt.Errorf("missing apply_to block")}
	}
	if strings.TrimSpace(rc.PriceFormula) == "" {
		return nil, &config.Error{Field: field("price_formula"), Err: fmt.Errorf("missing price formula")}
	}
	formula, err := Compile(rc.PriceFormula)
	if err != nil {
		return nil, &config.Error{Field: field("price_formula"), Err: err}
	}
	return &Rule{
		TriggerPhrase: rc.TextForSearch,
		AppliesUA:     rc.ApplyTo.UA,
		AppliesEU:     rc.ApplyTo.EU,
		Formula:       formula,
		InfoText:      rc.InfoText,
		BackgroundHex: hexcolor.Normalize(rc.PriceBackgroundColorHex),
		FontHex:       hexcolor.Normalize(rc.PriceFontColorHex),
	}, nil
}

// Match scans the rules in configured order and returns the first one
// whose trigger phrase is a substring of promoText. Returns nil when
// promoText is empty or no rule matches.
func (r *Registry) Match(promoText string) *Rule {
	if r == nil || strings.TrimSpace(promoText) == "" {
		return nil
	}
	for _, rule := range r.rules {
		if strings.Contains(promoText, rule.TriggerPhrase) {
			return rule
		}
	}
	return nil
}

// Len returns the number of loaded rules.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}
