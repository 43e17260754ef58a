// Package classify holds the normalization rules shared by every producer of
// ledger rows: category identifiers, item names, and amount signs. All three
// pipelines (statement extraction, receipt parsing, conversation capture) go
// through these helpers so the database never sees two spellings of the same
// thing.
package classify

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCategoryID is where anything unrecognized lands.
const DefaultCategoryID = "other"

// CategoryID normalizes a model-suggested category label to its identifier
// form: lowercase with hyphens for spaces. Unknown labels fall back to
// DefaultCategoryID when known is non-nil. Idempotent: feeding an identifier
// back in returns it unchanged.
func CategoryID(label string, known map[string]bool) string {
	id := slug(label)
	if id == "" {
		return DefaultCategoryID
	}
	if known != nil && !known[id] {
		return DefaultCategoryID
	}
	return id
}

// ItemName normalizes a purchased item name for cross-receipt price
// comparison: "Organic Milk 2%" and "organic milk 2%" are the same item.
func ItemName(name string) string {
	return slug(name)
}

func slug(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	return strings.Join(fields, "-")
}

// SignedAmount fixes the canonical sign on a magnitude: expenses are
// negative, income is positive. Call sites apply it exactly once, at the
// boundary that produces the row; amounts already signed by statement
// extraction are never re-derived.
func SignedAmount(magnitude decimal.Decimal, isExpense bool) decimal.Decimal {
	abs := magnitude.Abs()
	if isExpense {
		return abs.Neg()
	}
	return abs
}
