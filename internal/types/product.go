package types

import "github.com/okravets/pricestalk/internal/salerule"

// Region identifies which stock a product variant ships from.
type Region int

const (
	// RegionUA is the default, local stock.
	RegionUA Region = iota

	// RegionEU marks variants carrying the EU-stock indicator element.
	RegionEU
)

func (r Region) String() string {
	if r == RegionEU {
		return "EU"
	}
	return "UA"
}

// Variant is one purchasable option of a product (a size, a shade),
// with its own price and stock region.
type Variant struct {
	// Title is the variant's display title. May be empty when the
	// source element carries no title attribute.
	Title string

	// Region is the stock region flag parsed from the page.
	Region Region

	// BasePrice is the scraped price, in whole local-currency units.
	BasePrice int

	// FinalPrice is the price after sale-rule evaluation. Equals
	// BasePrice when no rule applied or evaluation failed.
	FinalPrice int

	// AppliedRule is the sale rule that actually changed this
	// variant's price, nil otherwise.
	AppliedRule *salerule.Rule

	// Note carries rule info text or a formula-failure diagnostic.
	Note string
}

// Product is the structured result of extracting one product page.
type Product struct {
	Name     string
	Brand    string
	URL      string
	Variants []Variant

	// ActiveRule is the sale rule matched against the page's promo
	// text, nil when none matched.
	ActiveRule *salerule.Rule

	// HasError marks products whose page could not be fetched or
	// parsed. Such products are still reported as diagnostic rows.
	HasError bool

	// ErrorNote describes the failure class when HasError is set
	// (not_found, network_error, parse_error).
	ErrorNote string

	// Note collects non-fatal extraction diagnostics, e.g. variants
	// dropped for a missing price attribute.
	Note string

	// RefPrice is the caller-supplied threshold in local currency,
	// set by the driver after extraction.
	RefPrice int
}

// NewProduct creates an empty product for the given page URL.
func NewProduct(url string) *Product {
	return &Product{URL: url}
}

// AddNote appends a diagnostic note, comma-joining with any prior one.
func (p *Product) AddNote(note string) {
	if p.Note == "" {
		p.Note = note
		return
	}
	p.Note += ", " + note
}

// InputRow is one line of the scan input CSV.
type InputRow struct {
	// URL is the product page to scrape.
	URL string

	// TitleFilter restricts reported variants to those whose title
	// contains this substring. Empty means no filter.
	TitleFilter string

	// RefPriceUSD and RefPriceUAH are the raw price fields. Exactly
	// one is expected; USD takes precedence when both are present.
	RefPriceUSD string
	RefPriceUAH string

	// Line is the 1-based line number in the input file.
	Line int
}
