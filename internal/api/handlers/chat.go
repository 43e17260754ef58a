package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/porkytheblack/yuki/internal/api/middleware"
	"github.com/porkytheblack/yuki/internal/detect"
	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/llm"
	"github.com/porkytheblack/yuki/internal/query"
	"github.com/porkytheblack/yuki/internal/store"
)

// ChatHandler handles the natural-language query and expense detection
// endpoints. The provider client is built per request from the stored
// settings so a settings change applies immediately.
type ChatHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(st *store.Store, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{store: st, log: log}
}

func (h *ChatHandler) client(w http.ResponseWriter) (llm.Client, bool) {
	provider, err := h.store.Provider()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusPreconditionFailed, "No LLM provider configured")
			return nil, false
		}
		h.log.Error().Err(err).Msg("Failed to load provider settings")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load provider settings")
		return nil, false
	}

	client, err := llm.New(*provider)
	if err != nil {
		middleware.WriteError(w, http.StatusPreconditionFailed, err.Error())
		return nil, false
	}
	return client, true
}

// Message handles POST /api/chat/message, returning response cards.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	client, ok := h.client(w)
	if !ok {
		return
	}

	response, err := query.NewEngine(h.store, client).Answer(r.Context(), req.Message)
	if err != nil {
		h.log.Error().Err(err).Msg("Query processing failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process the question")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}

// Detect handles POST /api/chat/detect. It classifies a chat message as
// transaction-bearing or not; when commit is set, a positive detection is
// written to the ledger with the conversation source tag.
func (h *ChatHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
		Commit  bool   `json:"commit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	client, ok := h.client(w)
	if !ok {
		return
	}

	categories, err := h.store.CategoryNames()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list category names")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	result, err := detect.New(client).Detect(r.Context(), req.Message, categories)
	if err != nil {
		h.log.Error().Err(err).Msg("Expense detection failed")
		middleware.WriteError(w, http.StatusBadGateway, "Expense detection failed")
		return
	}

	if !result.IsTransaction || !req.Commit {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"detection": result})
		return
	}

	entry := domain.LedgerEntry{
		Date:        result.Date,
		Description: result.Description,
		Amount:      *result.Amount,
		Currency:    h.store.DefaultCurrency(),
		CategoryID:  result.Category,
		Merchant:    result.Merchant,
		Source:      domain.SourceConversation,
	}
	if err := h.store.CreateLedgerEntry(&entry); err != nil {
		h.log.Error().Err(err).Msg("Failed to persist detected expense")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save the detected expense")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"detection": result,
		"entry":     entry,
	})
}

// History handles GET /api/chat/history
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	history, err := h.store.ListChatHistory(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list chat history")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list chat history")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"count":   len(history),
	})
}

// ClearHistory handles DELETE /api/chat/history
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearChatHistory(); err != nil {
		h.log.Error().Err(err).Msg("Failed to clear chat history")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to clear chat history")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Reset handles POST /api/chat/reset. The conversation context starts over;
// chat history is untouched.
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.ResetConversation()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to reset conversation")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to reset conversation")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset", "session_id": session.ID})
}
