package salerule

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/okravets/pricestalk/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func applyTo(ua, eu bool) *config.ApplyToConfig {
	return &config.ApplyToConfig{UA: ua, EU: eu}
}

func TestRegistryMatchFirstWins(t *testing.T) {
	reg, err := Load([]config.SaleRuleConfig{
		{TextForSearch: "1+1=3", ApplyTo: applyTo(true, false), PriceFormula: "x*2/3"},
		{TextForSearch: "1+1", ApplyTo: applyTo(true, true), PriceFormula: "x/2"},
	}, testLogger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Both trigger phrases occur in the text; the earlier rule wins.
	rule := reg.Match("Акція: 1+1=3 на все")
	if rule == nil {
		t.Fatal("expected a match")
	}
	if rule.TriggerPhrase != "1+1=3" {
		t.Errorf("matched %q, want the first-registered rule", rule.TriggerPhrase)
	}

	// Only the second rule's phrase occurs.
	rule = reg.Match("купуй 1+1 сьогодні")
	if rule == nil || rule.TriggerPhrase != "1+1" {
		t.Errorf("expected second rule to match")
	}
}

func TestRegistryMatchEmptyText(t *testing.T) {
	reg, err := Load([]config.SaleRuleConfig{
		{TextForSearch: "sale", ApplyTo: applyTo(true, true), PriceFormula: "x"},
	}, testLogger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reg.Match("") != nil {
		t.Error("empty text must not match")
	}
	if reg.Match("   ") != nil {
		t.Error("blank text must not match")
	}
	if reg.Match("no promotions here") != nil {
		t.Error("unrelated text must not match")
	}
}

func TestRegistryLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.SaleRuleConfig
	}{
		{"missing trigger", config.SaleRuleConfig{ApplyTo: applyTo(true, true), PriceFormula: "x"}},
		{"missing apply_to", config.SaleRuleConfig{TextForSearch: "sale", PriceFormula: "x"}},
		{"missing formula", config.SaleRuleConfig{TextForSearch: "sale", ApplyTo: applyTo(true, true)}},
		{"bad formula", config.SaleRuleConfig{TextForSearch: "sale", ApplyTo: applyTo(true, true), PriceFormula: "x+"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]config.SaleRuleConfig{tc.cfg}, testLogger)
			if err == nil {
				t.Fatal("expected load error")
			}
			var cerr *config.Error
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *config.Error, got %T", err)
			}
		})
	}
}

func TestRuleColorNormalization(t *testing.T) {
	reg, err := Load([]config.SaleRuleConfig{
		{
			TextForSearch:           "знижка",
			ApplyTo:                 applyTo(true, true),
			PriceFormula:            "x*2/3",
			PriceBackgroundColorHex: "FFDD00",
			PriceFontColorHex:       "not-a-color",
		},
	}, testLogger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rule := reg.Match("знижка 33%")
	if rule == nil {
		t.Fatal("expected a match")
	}
	if rule.BackgroundHex != "#FFDD00" {
		t.Errorf("BackgroundHex = %q, want %q", rule.BackgroundHex, "#FFDD00")
	}
	if rule.FontHex != "" {
		t.Errorf("FontHex = %q, want empty for invalid input", rule.FontHex)
	}
}

func TestRuleApplies(t *testing.T) {
	reg, err := Load([]config.SaleRuleConfig{
		{TextForSearch: "sale", ApplyTo: applyTo(true, false), PriceFormula: "x/2"},
	}, testLogger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rule := reg.Match("sale")
	if !rule.Applies(false) {
		t.Error("rule should apply to UA stock")
	}
	if rule.Applies(true) {
		t.Error("rule should not apply to EU stock")
	}
}
