package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/jobs"
	"github.com/porkytheblack/yuki/internal/jobs/inmemory"
	"github.com/porkytheblack/yuki/internal/logger"
	"github.com/porkytheblack/yuki/internal/store"
)

// recordingPublisher captures published jobs without running a worker.
type recordingPublisher struct {
	published []*jobs.ProcessDocumentJob
}

func (p *recordingPublisher) PublishProcessDocument(_ context.Context, job *jobs.ProcessDocumentJob) error {
	job.JobID = "job-" + time.Now().Format("150405.000000000")
	job.Status = jobs.JobStatusPending
	p.published = append(p.published, job)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *store.Store, *recordingPublisher) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	publisher := &recordingPublisher{}
	router := NewRouter(Deps{
		Store:     st,
		JobStore:  inmemory.NewStore(),
		Publisher: publisher,
		Log:       logger.NewWithWriter(new(bytes.Buffer)),
	})
	return router, st, publisher
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestSeededCategoriesExposed(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 15, decodeBody(t, rec)["count"])
}

func uploadRequest(t *testing.T, docType, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_type", docType))
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadEnqueuesJob(t *testing.T) {
	router, _, publisher := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "statement", "march.pdf", []byte("%PDF-1.4 fake")))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "march.pdf", publisher.published[0].Filename)
	assert.Equal(t, "statement", publisher.published[0].DocumentType)
	assert.NotEmpty(t, decodeBody(t, rec)["job_id"])
}

func TestUploadDuplicateContentRejected(t *testing.T) {
	router, st, publisher := newTestRouter(t)

	data := []byte("statement bytes")
	hash := sha256.Sum256(data)
	require.NoError(t, st.CreateDocument(&domain.Document{
		Filename: "march.pdf",
		Filepath: "/tmp/march.pdf",
		Filetype: "pdf",
		Hash:     hex.EncodeToString(hash[:]),
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "statement", "march-again.pdf", data))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, publisher.published)
}

func TestUploadRequiresDocumentType(t *testing.T) {
	router, _, publisher := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "", "march.pdf", []byte("bytes")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, publisher.published)
}

func TestLedgerCreateAndList(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/ledger", map[string]any{
		"date":        "2024-03-01",
		"description": "coffee",
		"amount":      "-4.5",
		"category_id": "dining",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	assert.Equal(t, "manual", created["source"])
	assert.Equal(t, "USD", created["currency"])

	rec = doJSON(t, router, http.MethodGet, "/api/ledger?category_id=dining", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody(t, rec)["count"])
}

func TestLedgerCreateRequiresFields(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/ledger", map[string]any{"description": "no date"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDefaultAccountProtected(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodDelete, "/api/accounts/default", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDefaultCategoryDeleteRefused(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodDelete, "/api/categories/groceries", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHideCategory(t *testing.T) {
	router, st, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/categories/entertainment/hidden", map[string]any{"hidden": true})
	require.Equal(t, http.StatusOK, rec.Code)

	names, err := st.CategoryNames()
	require.NoError(t, err)
	assert.NotContains(t, names, "Entertainment")
}

func TestPrimaryCurrencyProtected(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodDelete, "/api/currencies/USD", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestChatRequiresProvider(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/chat/message", map[string]any{"message": "how much did I spend?"})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
}

func TestProviderRoundTripMasksKey(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/settings/provider", map[string]any{
		"type":     "anthropic",
		"name":     "Anthropic",
		"endpoint": "https://api.anthropic.com/v1",
		"apiKey":   "sk-ant-secret",
		"model":    "claude-sonnet-4-20250514",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/settings/provider", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sk-ant-secret")
	assert.Contains(t, rec.Body.String(), "anthropic")
}

func TestUnknownProviderTypeRejected(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPut, "/api/settings/provider", map[string]any{"type": "skynet"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := doJSON(t, router, http.MethodDelete, "/api/items", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChatResetStartsNewSession(t *testing.T) {
	router, st, _ := newTestRouter(t)

	first, err := st.ActiveSession()
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/api/chat/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	newID, _ := decodeBody(t, rec)["session_id"].(string)
	assert.NotEmpty(t, newID)
	assert.NotEqual(t, first.ID, newID)
}

func TestShiftPath(t *testing.T) {
	for _, tt := range []struct{ in, head, rest string }{
		{"abc", "abc", ""},
		{"abc/def", "abc", "def"},
		{"/abc/def", "abc", "def"},
		{"", "", ""},
	} {
		head, rest := shiftPath(tt.in)
		assert.Equal(t, tt.head, head, tt.in)
		assert.Equal(t, tt.rest, rest, tt.in)
	}
}
