// Package extract turns document content into structured transactions and
// receipts via the configured model. Model output is untrusted: every
// response is fence-stripped, decoded row by row, and rows that fail to
// decode are dropped rather than failing the batch.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/porkytheblack/yuki/internal/classify"
	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/llm"
	"github.com/porkytheblack/yuki/internal/logger"
)

// ErrUnparsable means the model replied but no usable JSON could be
// recovered from the reply.
var ErrUnparsable = errors.New("extract: no parseable JSON in model response")

// Engine runs extraction prompts against one model client.
type Engine struct {
	client llm.Client
}

func New(client llm.Client) *Engine {
	return &Engine{client: client}
}

// StatementFromText extracts transactions from text-extractable statement
// content. Amounts come back already signed by the model (expenses negative)
// and are trusted as-is. Rows missing a date or description are dropped.
func (e *Engine) StatementFromText(ctx context.Context, text string, categories []string) ([]domain.Transaction, error) {
	raw, err := e.client.Complete(ctx, llm.Request{
		System: statementSystemPrompt(categories),
		Prompt: "Parse transactions from this document:\n\n" + text,
	})
	if err != nil {
		return nil, err
	}
	return decodeTransactions(ctx, raw, categories), nil
}

// StatementFromImage extracts transactions from a statement that has no text
// layer, using the vision pathway.
func (e *Engine) StatementFromImage(ctx context.Context, data []byte, mediaType string, categories []string) ([]domain.Transaction, error) {
	raw, err := e.client.Complete(ctx, llm.Request{
		System:    scannedStatementSystemPrompt(categories),
		Prompt:    "Extract all transactions from this bank statement. Return a JSON array with every transaction.",
		Image:     data,
		MediaType: mediaType,
	})
	if err != nil {
		return nil, err
	}
	return decodeTransactions(ctx, raw, categories), nil
}

// ReceiptFromText extracts a full itemized receipt from extractable text.
func (e *Engine) ReceiptFromText(ctx context.Context, text string, categories []string) (*domain.ParsedReceipt, error) {
	raw, err := e.client.Complete(ctx, llm.Request{
		System: receiptSystemPrompt(categories, false),
		Prompt: "Analyze this receipt and extract detailed item information:\n\n" + text,
	})
	if err != nil {
		return nil, err
	}
	return decodeReceipt(raw)
}

// ReceiptFromImage extracts a full itemized receipt from a photographed or
// scanned document via the vision pathway.
func (e *Engine) ReceiptFromImage(ctx context.Context, data []byte, mediaType string, categories []string) (*domain.ParsedReceipt, error) {
	raw, err := e.client.Complete(ctx, llm.Request{
		System:    receiptSystemPrompt(categories, true),
		Prompt:    "Analyze this receipt image and extract detailed item information.",
		Image:     data,
		MediaType: mediaType,
	})
	if err != nil {
		return nil, err
	}
	return decodeReceipt(raw)
}

// decodeTransactions recovers a transaction array from raw model output.
// Each row decodes independently so one malformed row cannot sink the rest.
func decodeTransactions(ctx context.Context, raw string, categories []string) []domain.Transaction {
	log := logger.FromContext(ctx)

	cleaned := stripFences(raw)
	var rows []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &rows); err != nil {
		inner := extractArray(cleaned)
		if inner == "" || json.Unmarshal([]byte(inner), &rows) != nil {
			log.Error().Str("preview", preview(cleaned)).Msg("statement response has no JSON array")
			return nil
		}
	}

	// Amount decodes through a pointer so an absent field is distinguishable
	// from a legitimate zero and the row can be dropped.
	type txRow struct {
		Date        string           `json:"date"`
		Description string           `json:"description"`
		Amount      *decimal.Decimal `json:"amount"`
		Currency    string           `json:"currency"`
		Category    string           `json:"category"`
		Merchant    *string          `json:"merchant"`
	}

	known := knownCategoryIDs(categories)
	out := make([]domain.Transaction, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		var t txRow
		if err := json.Unmarshal(row, &t); err != nil {
			dropped++
			continue
		}
		if t.Date == "" || t.Description == "" || t.Amount == nil {
			dropped++
			continue
		}
		if t.Currency == "" {
			t.Currency = "USD"
		}
		out = append(out, domain.Transaction{
			Date:        t.Date,
			Description: t.Description,
			Amount:      *t.Amount,
			Currency:    t.Currency,
			Category:    classify.CategoryID(t.Category, known),
			Merchant:    t.Merchant,
		})
	}
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Int("kept", len(out)).Msg("dropped malformed transaction rows")
	}
	return out
}

func decodeReceipt(raw string) (*domain.ParsedReceipt, error) {
	cleaned := stripFences(raw)
	var receipt domain.ParsedReceipt
	if err := json.Unmarshal([]byte(cleaned), &receipt); err != nil {
		inner := extractObject(cleaned)
		if inner == "" || json.Unmarshal([]byte(inner), &receipt) != nil {
			return nil, ErrUnparsable
		}
	}
	items := receipt.Items[:0]
	for _, item := range receipt.Items {
		if item.Name == "" {
			continue
		}
		item.Name = classify.ItemName(item.Name)
		items = append(items, item)
	}
	receipt.Items = items
	return &receipt, nil
}

func knownCategoryIDs(categories []string) map[string]bool {
	known := make(map[string]bool, len(categories)+1)
	known[classify.DefaultCategoryID] = true
	for _, name := range categories {
		known[classify.CategoryID(name, nil)] = true
	}
	return known
}

func preview(s string) string {
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}

// MediaTypeFor maps a filename extension to the MIME type sent on vision
// calls. Unknown extensions fall back to JPEG, matching how most phone
// photos arrive.
func MediaTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
