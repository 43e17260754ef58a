package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Source tags recorded on ledger entries, naming the pathway that produced them.
const (
	SourceDocument     = "document"
	SourceImage        = "image"
	SourceConversation = "conversation"
	SourceManual       = "manual"
	SourceScannedPDF   = "scanned-pdf"
)

// DocumentType is the user-selected tag on an upload. It is an input to the
// routing table, not an inferred property of the file.
type DocumentType string

const (
	DocTypeStatement DocumentType = "statement"
	DocTypeReceipt   DocumentType = "receipt"
)

// OtherCategoryID is the fallback bucket for unmappable category names.
const OtherCategoryID = "other"

// IncomeCategoryID marks inflows; everything else is stored negative.
const IncomeCategoryID = "income"

// Document is one uploaded source file. Immutable after creation; deleting it
// cascades to the ledger entries extracted from it.
type Document struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Filename   string    `gorm:"not null" json:"filename"`
	Filepath   string    `gorm:"not null" json:"filepath"`
	Filetype   string    `gorm:"not null" json:"filetype"`
	Hash       string    `gorm:"uniqueIndex;not null" json:"hash"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`
}

func (Document) TableName() string { return "documents" }

// Account is a named money container. Exactly one account is the default.
type Account struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	AccountType string    `gorm:"not null;default:checking" json:"account_type"`
	Institution *string   `json:"institution"`
	Currency    string    `gorm:"not null;default:USD" json:"currency"`
	IsDefault   bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Account) TableName() string { return "accounts" }

// Category is a spending bucket. Default categories are seeded at first run
// and can only be hidden, never deleted.
type Category struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Icon      *string   `json:"icon"`
	Color     *string   `json:"color"`
	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	Hidden    bool      `gorm:"not null;default:false" json:"hidden"`
	CreatedAt time.Time `json:"created_at"`
}

func (Category) TableName() string { return "categories" }

// Currency is a user-maintained reference row. Conversion rates are relative
// to the single primary currency (rate 1.0). Ledger entries keep their
// currency code as free text, so deleting a referenced currency is legal.
type Currency struct {
	Code           string          `gorm:"primaryKey" json:"code"`
	Name           string          `gorm:"not null" json:"name"`
	Symbol         string          `gorm:"not null" json:"symbol"`
	ConversionRate decimal.Decimal `gorm:"type:decimal;not null;default:1.0" json:"conversion_rate"`
	IsPrimary      bool            `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (Currency) TableName() string { return "currencies" }

// LedgerEntry is one signed financial transaction. Negative amount = outflow,
// positive = inflow; the sign is fixed by the producing pathway and is never
// re-derived downstream. Date is an ISO 8601 day kept as text so that
// generated SQL can use SQLite's date functions directly.
type LedgerEntry struct {
	ID         string          `gorm:"primaryKey" json:"id"`
	DocumentID *string         `gorm:"index" json:"document_id"`
	AccountID  *string         `gorm:"index" json:"account_id"`
	Date       string          `gorm:"not null" json:"date"`
	Description string         `gorm:"not null" json:"description"`
	Amount     decimal.Decimal `gorm:"type:decimal;not null" json:"amount"`
	Currency   string          `gorm:"not null;default:USD" json:"currency"`
	CategoryID string          `gorm:"not null;index" json:"category_id"`
	Merchant   *string         `json:"merchant"`
	Notes      *string         `json:"notes"`
	Source     string          `gorm:"not null" json:"source"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (LedgerEntry) TableName() string { return "ledger" }

// ReceiptLine is the simplified {name, amount} projection stored on Receipt.
// The detailed line items live in purchased_items.
type ReceiptLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Receipt is metadata for a document identified as itemized purchase
// evidence. LedgerID stays nil on the receipt pathway, which deliberately
// creates no ledger entry.
type Receipt struct {
	ID         string           `gorm:"primaryKey" json:"id"`
	DocumentID string           `gorm:"not null;index" json:"document_id"`
	LedgerID   *string          `json:"ledger_id"`
	Merchant   string           `gorm:"not null" json:"merchant"`
	Items      datatypes.JSON   `gorm:"not null" json:"items"`
	Tax        *decimal.Decimal `gorm:"type:decimal" json:"tax"`
	Total      decimal.Decimal  `gorm:"type:decimal;not null" json:"total"`
}

func (Receipt) TableName() string { return "receipts" }

// PurchasedItem is one granular receipt line kept for analytics. Created in
// bulk after a receipt parse, never individually mutated.
type PurchasedItem struct {
	ID          string           `gorm:"primaryKey" json:"id"`
	ReceiptID   *string          `gorm:"index" json:"receipt_id"`
	LedgerID    *string          `gorm:"index" json:"ledger_id"`
	Name        string           `gorm:"not null" json:"name"`
	Quantity    decimal.Decimal  `gorm:"type:decimal;not null;default:1" json:"quantity"`
	Unit        *string          `json:"unit"`
	UnitPrice   *decimal.Decimal `gorm:"type:decimal" json:"unit_price"`
	TotalPrice  decimal.Decimal  `gorm:"type:decimal;not null" json:"total_price"`
	Category    *string          `json:"category"`
	Brand       *string          `json:"brand"`
	PurchasedAt string           `gorm:"not null" json:"purchased_at"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (PurchasedItem) TableName() string { return "purchased_items" }

// ChatHistoryEntry is one question/answer exchange. The generated SQL is kept
// for transparency only and is never re-executed.
type ChatHistoryEntry struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Question  string         `gorm:"not null" json:"question"`
	SQLQuery  string         `gorm:"column:sql_query;not null" json:"sql_query"`
	Response  datatypes.JSON `gorm:"not null" json:"response"`
	CardCount int            `gorm:"not null" json:"card_count"`
	CreatedAt time.Time      `json:"created_at"`
}

func (ChatHistoryEntry) TableName() string { return "chat_history" }

// ConversationSession groups chat messages so recent context can be replayed
// into prompts.
type ConversationSession struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ConversationSession) TableName() string { return "conversation_sessions" }

// ConversationMessage is one user or assistant turn.
type ConversationMessage struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"not null;index" json:"session_id"`
	Role      string    `gorm:"not null" json:"role"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (ConversationMessage) TableName() string { return "conversation_messages" }

// Setting is one key/value row; the LLM provider configuration is stored
// under the "provider" key as JSON.
type Setting struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `gorm:"not null" json:"value"`
}

func (Setting) TableName() string { return "settings" }
