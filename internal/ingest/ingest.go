// Package ingest is the upload pipeline: hash and persist the document,
// figure out what kind of content it holds, route it through exactly one
// extraction pathway, and persist the outcome atomically.
//
// Routing by (document type, content form):
//
//	statement + text   -> one ledger entry per transaction
//	statement + image  -> exactly one ledger entry for the receipt total
//	receipt   + text   -> receipt with full item list, no ledger entry
//	receipt   + image  -> receipt with full item list, no ledger entry
//
// A failed extraction leaves the document row and the saved file behind so
// the upload is never lost, but persists neither ledger entries nor items.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/porkytheblack/yuki/internal/classify"
	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/extract"
	"github.com/porkytheblack/yuki/internal/logger"
	"github.com/porkytheblack/yuki/internal/store"
)

// Extractor is the slice of the extraction engine the pipeline needs.
// Scanned statements go through the receipt vision parse, so there is no
// statement-from-image method here.
type Extractor interface {
	StatementFromText(ctx context.Context, text string, categories []string) ([]domain.Transaction, error)
	ReceiptFromText(ctx context.Context, text string, categories []string) (*domain.ParsedReceipt, error)
	ReceiptFromImage(ctx context.Context, data []byte, mediaType string, categories []string) (*domain.ParsedReceipt, error)
}

// Upload is one incoming file plus the user's explicit document type choice.
type Upload struct {
	Filename     string
	Data         []byte
	DocumentType domain.DocumentType
}

// Result summarizes what one upload produced.
type Result struct {
	Document       *domain.Document `json:"document"`
	EntriesCreated int              `json:"entries_created"`
	ItemsCreated   int              `json:"items_created"`
	ReceiptID      string           `json:"receipt_id,omitempty"`
}

// Pipeline processes uploads one at a time.
type Pipeline struct {
	store     *store.Store
	extractor Extractor
	docsDir   string
}

func NewPipeline(st *store.Store, extractor Extractor, docsDir string) *Pipeline {
	return &Pipeline{store: st, extractor: extractor, docsDir: docsDir}
}

// Process runs one upload through the pipeline. A duplicate upload (same
// content hash) returns store.ErrDuplicate and persists nothing.
func (p *Pipeline) Process(ctx context.Context, upload Upload) (*Result, error) {
	log := logger.FromContext(ctx).With().Str("filename", upload.Filename).Logger()

	if upload.DocumentType != domain.DocTypeStatement && upload.DocumentType != domain.DocTypeReceipt {
		return nil, fmt.Errorf("ingest: unknown document type %q", upload.DocumentType)
	}

	sum := sha256.Sum256(upload.Data)
	hash := hex.EncodeToString(sum[:])

	id := uuid.NewString()
	path, err := saveFile(p.docsDir, id, upload.Filename, upload.Data)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:         id,
		Filename:   filepath.Base(upload.Filename),
		Filepath:   path,
		Filetype:   extract.MediaTypeFor(upload.Filename),
		Hash:       hash,
		UploadedAt: time.Now(),
	}
	if err := p.store.CreateDocument(doc); err != nil {
		os.Remove(path)
		return nil, err
	}

	// From here on the document row is durable. Extraction failures leave
	// the file "unparsed", never "lost".
	result := &Result{Document: doc}
	categories, err := p.store.CategoryNames()
	if err != nil {
		return result, err
	}

	content := classifyContent(upload)
	log.Info().
		Str("document_type", string(upload.DocumentType)).
		Str("content_form", string(content.form)).
		Msg("routing upload")

	switch {
	case upload.DocumentType == domain.DocTypeStatement && content.form == formText:
		return p.statementFromText(ctx, result, content.text, categories)
	case upload.DocumentType == domain.DocTypeStatement:
		return p.statementFromImage(ctx, result, upload, categories)
	case content.form == formText:
		return p.receiptOutcome(ctx, result, func() (*domain.ParsedReceipt, error) {
			return p.extractor.ReceiptFromText(ctx, content.text, categories)
		})
	default:
		return p.receiptOutcome(ctx, result, func() (*domain.ParsedReceipt, error) {
			return p.extractor.ReceiptFromImage(ctx, upload.Data, extract.MediaTypeFor(upload.Filename), categories)
		})
	}
}

type contentForm string

const (
	formText  contentForm = "text"
	formImage contentForm = "image"
)

type content struct {
	form contentForm
	text string
}

// classifyContent decides whether the upload has a usable text layer. PDFs
// with too little extractable text count as scanned and take the vision
// pathway.
func classifyContent(upload Upload) content {
	switch strings.ToLower(filepath.Ext(upload.Filename)) {
	case ".pdf":
		text, err := extractPDFText(upload.Data)
		if err != nil || isScanned(text) {
			return content{form: formImage}
		}
		return content{form: formText, text: text}
	case ".csv", ".txt":
		return content{form: formText, text: string(upload.Data)}
	default:
		return content{form: formImage}
	}
}

func (p *Pipeline) statementFromText(ctx context.Context, result *Result, text string, categories []string) (*Result, error) {
	transactions, err := p.extractor.StatementFromText(ctx, text, categories)
	if err != nil {
		return result, err
	}

	entries := make([]domain.LedgerEntry, 0, len(transactions))
	for _, t := range transactions {
		entries = append(entries, domain.LedgerEntry{
			DocumentID:  &result.Document.ID,
			Date:        t.Date,
			Description: t.Description,
			Amount:      t.Amount,
			Currency:    t.Currency,
			CategoryID:  t.Category,
			Merchant:    t.Merchant,
			Source:      domain.SourceDocument,
		})
	}
	if err := p.store.CreateLedgerEntries(entries); err != nil {
		return result, err
	}
	result.EntriesCreated = len(entries)
	return result, nil
}

// statementFromImage handles a statement with no text layer. The vision
// receipt parse is reused and collapsed into exactly one ledger entry for
// the total; per-line breakdowns are deliberately not attempted here.
func (p *Pipeline) statementFromImage(ctx context.Context, result *Result, upload Upload, categories []string) (*Result, error) {
	receipt, err := p.extractor.ReceiptFromImage(ctx, upload.Data, extract.MediaTypeFor(upload.Filename), categories)
	if err != nil {
		return result, err
	}

	known := make(map[string]bool, len(categories)+1)
	known[classify.DefaultCategoryID] = true
	for _, name := range categories {
		known[classify.CategoryID(name, nil)] = true
	}
	categoryID := classify.CategoryID(receipt.Category, known)

	date := receipt.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	description := receipt.Merchant
	if description == "" {
		description = result.Document.Filename
	}

	entry := domain.LedgerEntry{
		DocumentID:  &result.Document.ID,
		Date:        date,
		Description: description,
		Amount:      classify.SignedAmount(receipt.Total, categoryID != domain.IncomeCategoryID),
		Currency:    p.store.DefaultCurrency(),
		CategoryID:  categoryID,
		Source:      domain.SourceScannedPDF,
	}
	if err := p.store.CreateLedgerEntry(&entry); err != nil {
		return result, err
	}
	result.EntriesCreated = 1
	return result, nil
}

func (p *Pipeline) receiptOutcome(ctx context.Context, result *Result, parse func() (*domain.ParsedReceipt, error)) (*Result, error) {
	parsed, err := parse()
	if err != nil {
		return result, err
	}

	date := parsed.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	lines := make([]domain.ReceiptLine, 0, len(parsed.Items))
	items := make([]domain.PurchasedItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		lines = append(lines, domain.ReceiptLine{Name: item.Name, Amount: item.TotalPrice})

		quantity := decimal.NewFromInt(1)
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		items = append(items, domain.PurchasedItem{
			Name:        item.Name,
			Quantity:    quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
			Category:    item.Category,
			Brand:       item.Brand,
			PurchasedAt: date,
		})
	}

	encoded, err := json.Marshal(lines)
	if err != nil {
		return result, fmt.Errorf("encode receipt lines: %w", err)
	}
	receipt := &domain.Receipt{
		DocumentID: result.Document.ID,
		Merchant:   parsed.Merchant,
		Items:      datatypes.JSON(encoded),
		Tax:        parsed.Tax,
		Total:      parsed.Total,
	}
	if err := p.store.CreateReceiptWithItems(receipt, items); err != nil {
		return result, err
	}
	result.ReceiptID = receipt.ID
	result.ItemsCreated = len(items)
	return result, nil
}
