package domain

import "github.com/shopspring/decimal"

// Transaction is one normalized transaction produced by the model from a
// statement. Amount is already signed: expenses negative, income positive.
type Transaction struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Merchant    *string         `json:"merchant"`
}

// Item is one detailed receipt line as extracted by the model. TotalPrice is
// the only required monetary field; Quantity defaults to 1 when absent.
type Item struct {
	Name       string           `json:"name"`
	Quantity   *decimal.Decimal `json:"quantity"`
	Unit       *string          `json:"unit"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal  `json:"total_price"`
	Category   *string          `json:"category"`
	Brand      *string          `json:"brand"`
}

// ParsedReceipt is the model's view of a receipt, produced by the text and
// vision receipt pathways alike.
type ParsedReceipt struct {
	Merchant string           `json:"merchant"`
	Date     string           `json:"date"`
	Items    []Item           `json:"items"`
	Tax      *decimal.Decimal `json:"tax"`
	Total    decimal.Decimal  `json:"total"`
	Category string           `json:"category"`
}

// Detection confidence tiers.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// DetectionResult is the outcome of classifying a chat message. The optional
// fields are set only when IsTransaction is true.
type DetectionResult struct {
	IsTransaction bool             `json:"is_transaction"`
	Date          string           `json:"date,omitempty"`
	Description   string           `json:"description,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Category      string           `json:"category,omitempty"`
	Merchant      *string          `json:"merchant,omitempty"`
	Confidence    string           `json:"confidence,omitempty"`
}
