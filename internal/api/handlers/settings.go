package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/porkytheblack/yuki/internal/api/middleware"
	"github.com/porkytheblack/yuki/internal/llm"
	"github.com/porkytheblack/yuki/internal/store"
)

// SettingsHandler handles provider configuration endpoints.
type SettingsHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(st *store.Store, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{store: st, log: log}
}

// GetProvider handles GET /api/settings/provider. The API key is masked on
// the way out.
func (h *SettingsHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	provider, err := h.store.Provider()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"provider": nil})
			return
		}
		h.log.Error().Err(err).Msg("Failed to load provider settings")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load provider settings")
		return
	}

	masked := *provider
	if masked.APIKey != "" {
		masked.APIKey = "********"
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"provider": masked})
}

// SaveProvider handles PUT /api/settings/provider
func (h *SettingsHandler) SaveProvider(w http.ResponseWriter, r *http.Request) {
	var provider llm.Provider
	if err := json.NewDecoder(r.Body).Decode(&provider); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if provider.Type == "" {
		middleware.WriteError(w, http.StatusBadRequest, "type is required")
		return
	}
	if _, err := llm.New(provider); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SaveProvider(provider); err != nil {
		h.log.Error().Err(err).Msg("Failed to save provider settings")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save provider settings")
		return
	}

	h.log.Info().Str("type", provider.Type).Str("model", provider.Model).Msg("Provider configured")
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// TestConnection handles POST /api/settings/provider/test. The body may
// carry a candidate provider; with no body the stored one is tested.
func (h *SettingsHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	var provider llm.Provider
	if err := json.NewDecoder(r.Body).Decode(&provider); err != nil || provider.Type == "" {
		stored, err := h.store.Provider()
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "No provider configured")
			return
		}
		provider = *stored
	}

	if err := llm.TestConnection(r.Context(), provider); err != nil {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// GetSetting handles GET /api/settings/{key} for plain key/value settings
// like default_currency.
func (h *SettingsHandler) GetSetting(w http.ResponseWriter, r *http.Request, key string) {
	value, err := h.store.GetSetting(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Setting not found")
			return
		}
		h.log.Error().Err(err).Str("key", key).Msg("Failed to load setting")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load setting")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

// SetSetting handles PUT /api/settings/{key}
func (h *SettingsHandler) SetSetting(w http.ResponseWriter, r *http.Request, key string) {
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.SetSetting(key, req.Value); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to save setting")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save setting")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

// ListModels handles GET /api/models?type=...&endpoint=...&api_key=...
func (h *SettingsHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	providerType := query.Get("type")
	if providerType == "" {
		middleware.WriteError(w, http.StatusBadRequest, "type is required")
		return
	}

	endpoint := query.Get("endpoint")
	apiKey := query.Get("api_key")
	// fall back to the stored key so the UI does not have to resend it
	if apiKey == "" {
		if stored, err := h.store.Provider(); err == nil && stored.Type == providerType {
			apiKey = stored.APIKey
			if endpoint == "" {
				endpoint = stored.Endpoint
			}
		}
	}

	models, err := llm.ListModels(r.Context(), providerType, endpoint, apiKey)
	if err != nil {
		h.log.Warn().Err(err).Str("type", providerType).Msg("Model listing failed")
		middleware.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"models": models,
		"count":  len(models),
	})
}
