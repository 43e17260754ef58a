package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/porkytheblack/yuki/internal/api/middleware"
	"github.com/porkytheblack/yuki/internal/classify"
	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/store"
)

// LedgerHandler handles ledger entry endpoints.
type LedgerHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(st *store.Store, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{store: st, log: log}
}

// List handles GET /api/ledger
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.LedgerFilter{
		CategoryID: query.Get("category_id"),
		AccountID:  query.Get("account_id"),
		DocumentID: query.Get("document_id"),
		From:       query.Get("from"),
		To:         query.Get("to"),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	entries, err := h.store.ListLedger(filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list ledger entries")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list ledger entries")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// Create handles POST /api/ledger. Manual entries trust the submitted sign
// and carry the manual source tag.
func (h *LedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var entry domain.LedgerEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if entry.Date == "" || entry.Description == "" {
		middleware.WriteError(w, http.StatusBadRequest, "date and description are required")
		return
	}
	if entry.CategoryID == "" {
		entry.CategoryID = classify.DefaultCategoryID
	}
	if entry.Currency == "" {
		entry.Currency = h.store.DefaultCurrency()
	}
	if entry.Source == "" {
		entry.Source = domain.SourceManual
	}

	if err := h.store.CreateLedgerEntry(&entry); err != nil {
		h.log.Error().Err(err).Msg("Failed to create ledger entry")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create ledger entry")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, entry)
}

// Get handles GET /api/ledger/{id}
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	entry, err := h.store.GetLedgerEntry(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Ledger entry not found")
			return
		}
		h.log.Error().Err(err).Str("entry_id", id).Msg("Failed to get ledger entry")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get ledger entry")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, entry)
}

// Update handles PUT /api/ledger/{id}
func (h *LedgerHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var entry domain.LedgerEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entry.ID = id

	if err := h.store.UpdateLedgerEntry(&entry); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Ledger entry not found")
			return
		}
		h.log.Error().Err(err).Str("entry_id", id).Msg("Failed to update ledger entry")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update ledger entry")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated", "id": id})
}

// Delete handles DELETE /api/ledger/{id}
func (h *LedgerHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.DeleteLedgerEntry(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Ledger entry not found")
			return
		}
		h.log.Error().Err(err).Str("entry_id", id).Msg("Failed to delete ledger entry")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete ledger entry")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// ReceiptsHandler handles receipt and purchased item endpoints.
type ReceiptsHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewReceiptsHandler creates a new receipts handler.
func NewReceiptsHandler(st *store.Store, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{store: st, log: log}
}

// List handles GET /api/receipts
func (h *ReceiptsHandler) List(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.store.ListReceipts()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list receipts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list receipts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"receipts": receipts,
		"count":    len(receipts),
	})
}

// Get handles GET /api/receipts/{id}, returning the receipt with its items.
func (h *ReceiptsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	receipt, err := h.store.GetReceipt(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Receipt not found")
			return
		}
		h.log.Error().Err(err).Str("receipt_id", id).Msg("Failed to get receipt")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get receipt")
		return
	}

	items, err := h.store.ItemsForReceipt(id)
	if err != nil {
		h.log.Error().Err(err).Str("receipt_id", id).Msg("Failed to list receipt items")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list receipt items")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"receipt": receipt,
		"items":   items,
	})
}

// ListItems handles GET /api/items
func (h *ReceiptsHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListPurchasedItems()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list purchased items")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list purchased items")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}
