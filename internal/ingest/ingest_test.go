package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porkytheblack/yuki/internal/detect"
	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/extract"
	"github.com/porkytheblack/yuki/internal/llm"
	"github.com/porkytheblack/yuki/internal/store"
)

type cannedClient struct {
	response string
}

func (c *cannedClient) Complete(_ context.Context, _ llm.Request) (string, error) {
	return c.response, nil
}

type fakeExtractor struct {
	transactions []domain.Transaction
	receipt      *domain.ParsedReceipt
	err          error

	textCalls   int
	visionCalls int
}

func (f *fakeExtractor) StatementFromText(_ context.Context, _ string, _ []string) ([]domain.Transaction, error) {
	f.textCalls++
	return f.transactions, f.err
}

func (f *fakeExtractor) ReceiptFromText(_ context.Context, _ string, _ []string) (*domain.ParsedReceipt, error) {
	f.textCalls++
	return f.receipt, f.err
}

func (f *fakeExtractor) ReceiptFromImage(_ context.Context, _ []byte, _ string, _ []string) (*domain.ParsedReceipt, error) {
	f.visionCalls++
	return f.receipt, f.err
}

func newTestPipeline(t *testing.T, extractor Extractor) (*Pipeline, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewPipeline(st, extractor, filepath.Join(dir, "documents")), st
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestStatementTextCreatesEntriesPerTransaction(t *testing.T) {
	extractor := &fakeExtractor{transactions: []domain.Transaction{
		{Date: "2024-03-01", Description: "Grocery run", Amount: decimal.NewFromInt(-50), Currency: "USD", Category: "groceries"},
		{Date: "2024-03-02", Description: "Team lunch", Amount: decimal.NewFromInt(-25), Currency: "USD", Category: "dining"},
	}}
	pipeline, st := newTestPipeline(t, extractor)

	result, err := pipeline.Process(context.Background(), Upload{
		Filename:     "march.txt",
		Data:         []byte("2024-03-01 grocery run -50\n2024-03-02 team lunch -25"),
		DocumentType: domain.DocTypeStatement,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.EntriesCreated)
	assert.Equal(t, 0, result.ItemsCreated)
	assert.Equal(t, 1, extractor.textCalls)

	entries, err := st.ListLedger(store.LedgerFilter{DocumentID: result.Document.ID})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, e.Amount.IsNegative())
		assert.Equal(t, domain.SourceDocument, e.Source)
	}

	// the saved file is on disk under <id>_<name>
	_, statErr := os.Stat(result.Document.Filepath)
	assert.NoError(t, statErr)
	assert.Contains(t, result.Document.Filepath, result.Document.ID+"_march.txt")
}

func TestScannedStatementCreatesExactlyOneEntry(t *testing.T) {
	extractor := &fakeExtractor{receipt: &domain.ParsedReceipt{
		Merchant: "Corner Store",
		Date:     "2024-04-02",
		Items: []domain.Item{
			{Name: "item-one", TotalPrice: decimal.NewFromInt(10)},
			{Name: "item-two", TotalPrice: decimal.NewFromInt(15)},
			{Name: "item-three", TotalPrice: decimal.NewFromInt(20)},
		},
		Total:    decimal.NewFromInt(45),
		Category: "Shopping",
	}}
	pipeline, st := newTestPipeline(t, extractor)

	// a jpeg tagged as statement has no text layer and takes the vision
	// fallback
	result, err := pipeline.Process(context.Background(), Upload{
		Filename:     "photo-of-statement.jpg",
		Data:         []byte{0xFF, 0xD8, 0xFF},
		DocumentType: domain.DocTypeStatement,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntriesCreated)
	assert.Equal(t, 0, result.ItemsCreated)
	assert.Equal(t, 1, extractor.visionCalls)

	entries, err := st.ListLedger(store.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(-45)))
	assert.Equal(t, "shopping", entries[0].CategoryID)
	assert.Equal(t, "Corner Store", entries[0].Description)
	assert.Equal(t, domain.SourceScannedPDF, entries[0].Source)

	items, err := st.ListPurchasedItems()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestScannedStatementUsesStoreDefaultCurrency(t *testing.T) {
	extractor := &fakeExtractor{receipt: &domain.ParsedReceipt{
		Merchant: "Bistro",
		Date:     "2024-05-01",
		Total:    decimal.RequireFromString("42.50"),
		Category: "Dining",
	}}
	pipeline, st := newTestPipeline(t, extractor)
	require.NoError(t, st.SetSetting("default_currency", "EUR"))

	result, err := pipeline.Process(context.Background(), Upload{
		Filename:     "bistro.jpg",
		Data:         []byte{0xFF, 0xD8, 0xFF, 0x02},
		DocumentType: domain.DocTypeStatement,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.EntriesCreated)

	entries, err := st.ListLedger(store.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "EUR", entries[0].Currency)
}

// A category name has to resolve to the same id no matter which pathway
// produced it, otherwise the same spending splits across ghost categories.
func TestCategoryIDConvergesAcrossProducers(t *testing.T) {
	extractor := &fakeExtractor{receipt: &domain.ParsedReceipt{
		Merchant: "Bistro",
		Date:     "2024-05-01",
		Total:    decimal.RequireFromString("42.50"),
		Category: "Dining",
	}}
	pipeline, st := newTestPipeline(t, extractor)
	categories, err := st.CategoryNames()
	require.NoError(t, err)
	require.Contains(t, categories, "Dining")

	// statement extraction
	statementJSON := `[{"date":"2024-05-01","description":"Dinner out","amount":-42.5,"currency":"USD","category":"Dining","merchant":null}]`
	transactions, err := extract.New(&cannedClient{response: statementJSON}).
		StatementFromText(context.Background(), "2024-05-01 dinner out -42.50", categories)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "dining", transactions[0].Category)

	// scanned-statement fallback
	result, err := pipeline.Process(context.Background(), Upload{
		Filename:     "dinner.jpg",
		Data:         []byte{0xFF, 0xD8, 0xFF, 0x03},
		DocumentType: domain.DocTypeStatement,
	})
	require.NoError(t, err)
	entries, err := st.ListLedger(store.LedgerFilter{DocumentID: result.Document.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dining", entries[0].CategoryID)

	// conversational detection
	detectionJSON := `{"is_transaction":true,"date":"2024-05-01","description":"Dinner out","amount":42.5,"category":"Dining","confidence":"high"}`
	detected, err := detect.New(&cannedClient{response: detectionJSON}).
		Detect(context.Background(), "spent 42.50 on dinner", categories)
	require.NoError(t, err)
	require.True(t, detected.IsTransaction)
	assert.Equal(t, "dining", detected.Category)
}

func TestReceiptCreatesItemsAndNoLedgerEntry(t *testing.T) {
	extractor := &fakeExtractor{receipt: &domain.ParsedReceipt{
		Merchant: "Trader Joe's",
		Date:     "2024-02-10",
		Items: []domain.Item{
			{Name: "organic-bananas", Quantity: decPtr("2"), TotalPrice: decimal.RequireFromString("1.98")},
			{Name: "oat-milk", TotalPrice: decimal.RequireFromString("4.49")},
		},
		Tax:      decPtr("0.42"),
		Total:    decimal.RequireFromString("6.89"),
		Category: "Groceries",
	}}
	pipeline, st := newTestPipeline(t, extractor)

	result, err := pipeline.Process(context.Background(), Upload{
		Filename:     "receipt.jpg",
		Data:         []byte{0xFF, 0xD8, 0xFF, 0x01},
		DocumentType: domain.DocTypeReceipt,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.EntriesCreated)
	assert.Equal(t, 2, result.ItemsCreated)
	assert.NotEmpty(t, result.ReceiptID)

	entries, err := st.ListLedger(store.LedgerFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	items, err := st.ItemsForReceipt(result.ReceiptID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// missing quantity defaults to 1
	byName := map[string]domain.PurchasedItem{}
	for _, item := range items {
		byName[item.Name] = item
	}
	assert.True(t, byName["oat-milk"].Quantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, byName["organic-bananas"].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "2024-02-10", byName["oat-milk"].PurchasedAt)

	receipt, err := st.GetReceipt(result.ReceiptID)
	require.NoError(t, err)
	assert.Nil(t, receipt.LedgerID)
}

func TestReceiptTextPathway(t *testing.T) {
	extractor := &fakeExtractor{receipt: &domain.ParsedReceipt{
		Merchant: "Cafe",
		Date:     "2024-02-11",
		Items:    []domain.Item{{Name: "latte", TotalPrice: decimal.RequireFromString("4.50")}},
		Total:    decimal.RequireFromString("4.50"),
		Category: "Dining",
	}}
	pipeline, _ := newTestPipeline(t, extractor)

	result, err := pipeline.Process(context.Background(), Upload{
		Filename:     "receipt.txt",
		Data:         []byte("CAFE\nlatte 4.50\ntotal 4.50"),
		DocumentType: domain.DocTypeReceipt,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ItemsCreated)
	assert.Equal(t, 1, extractor.textCalls)
	assert.Equal(t, 0, extractor.visionCalls)
}

func TestDuplicateUploadRejected(t *testing.T) {
	extractor := &fakeExtractor{transactions: []domain.Transaction{}}
	pipeline, st := newTestPipeline(t, extractor)

	upload := Upload{Filename: "same.txt", Data: []byte("identical content"), DocumentType: domain.DocTypeStatement}
	_, err := pipeline.Process(context.Background(), upload)
	require.NoError(t, err)

	_, err = pipeline.Process(context.Background(), upload)
	require.ErrorIs(t, err, store.ErrDuplicate)

	docs, err := st.ListDocuments()
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestExtractionFailureKeepsDocumentOnly(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("model unavailable")}
	pipeline, st := newTestPipeline(t, extractor)

	result, err := pipeline.Process(context.Background(), Upload{
		Filename:     "statement.txt",
		Data:         []byte("some statement text that will fail"),
		DocumentType: domain.DocTypeStatement,
	})
	require.Error(t, err)
	require.NotNil(t, result)

	// the document row survived, nothing else was persisted
	_, getErr := st.GetDocument(result.Document.ID)
	assert.NoError(t, getErr)
	entries, listErr := st.ListLedger(store.LedgerFilter{})
	require.NoError(t, listErr)
	assert.Empty(t, entries)
}

func TestUnknownDocumentTypeRejected(t *testing.T) {
	pipeline, st := newTestPipeline(t, &fakeExtractor{})

	_, err := pipeline.Process(context.Background(), Upload{
		Filename:     "x.txt",
		Data:         []byte("content"),
		DocumentType: "invoice",
	})
	require.Error(t, err)

	docs, listErr := st.ListDocuments()
	require.NoError(t, listErr)
	assert.Empty(t, docs)
}

func TestIsScanned(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", true},
		{"whitespace only", "   \n\t  ", true},
		{"ocr artifacts", "a1 x9 zz", true},
		{"short but wordy", "one two three four five six seven eight nine ten eleven twelve", false},
		{"real statement text", "Date Description Debit Credit Balance 2024-01-01 Opening balance 0.00 1000.00 and so on with plenty of words", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isScanned(tt.text))
		})
	}
}
