package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/porkytheblack/yuki/internal/api/middleware"
	"github.com/porkytheblack/yuki/internal/domain"
	"github.com/porkytheblack/yuki/internal/store"
)

// CategoriesHandler handles category endpoints.
type CategoriesHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(st *store.Store, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{store: st, log: log}
}

// List handles GET /api/categories. Hidden categories are included only when
// ?include_hidden=true.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	includeHidden := r.URL.Query().Get("include_hidden") == "true"

	categories, err := h.store.ListCategories(includeHidden)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// Create handles POST /api/categories
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if category.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.store.CreateCategory(&category); err != nil {
		h.log.Error().Err(err).Msg("Failed to create category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, category)
}

// Update handles PUT /api/categories/{id}
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	category.ID = id

	if err := h.store.UpdateCategory(&category); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.log.Error().Err(err).Str("category_id", id).Msg("Failed to update category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated", "id": id})
}

// SetHidden handles PUT /api/categories/{id}/hidden
func (h *CategoriesHandler) SetHidden(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Hidden bool `json:"hidden"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.SetCategoryHidden(id, req.Hidden); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.log.Error().Err(err).Str("category_id", id).Msg("Failed to change category visibility")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to change category visibility")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"id": id, "hidden": req.Hidden})
}

// Delete handles DELETE /api/categories/{id}. Entries in the deleted
// category move to "other"; seeded categories are refused.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.DeleteCategory(id); err != nil {
		switch {
		case errors.Is(err, store.ErrProtected):
			middleware.WriteError(w, http.StatusConflict, "Default categories cannot be deleted, only hidden")
		case errors.Is(err, store.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Category not found")
		default:
			h.log.Error().Err(err).Str("category_id", id).Msg("Failed to delete category")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete category")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// Merge handles POST /api/categories/merge
func (h *CategoriesHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.From == "" || req.To == "" {
		middleware.WriteError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	if err := h.store.MergeCategories(req.From, req.To); err != nil {
		switch {
		case errors.Is(err, store.ErrProtected):
			middleware.WriteError(w, http.StatusConflict, "Default categories cannot be merged away")
		case errors.Is(err, store.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Category not found")
		default:
			h.log.Error().Err(err).Msg("Failed to merge categories")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to merge categories")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "merged", "from": req.From, "to": req.To})
}

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(st *store.Store, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{store: st, log: log}
}

// List handles GET /api/accounts
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.ListAccounts()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// Create handles POST /api/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var account domain.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if account.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.store.CreateAccount(&account); err != nil {
		h.log.Error().Err(err).Msg("Failed to create account")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, account)
}

// Update handles PUT /api/accounts/{id}
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var account domain.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	account.ID = id

	if err := h.store.UpdateAccount(&account); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Account not found")
			return
		}
		h.log.Error().Err(err).Str("account_id", id).Msg("Failed to update account")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update account")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated", "id": id})
}

// SetDefault handles POST /api/accounts/{id}/default
func (h *AccountsHandler) SetDefault(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.SetDefaultAccount(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Account not found")
			return
		}
		h.log.Error().Err(err).Str("account_id", id).Msg("Failed to set default account")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to set default account")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "default", "id": id})
}

// Delete handles DELETE /api/accounts/{id}. Entries on the deleted account
// move to the default account first.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.DeleteAccount(id); err != nil {
		switch {
		case errors.Is(err, store.ErrProtected):
			middleware.WriteError(w, http.StatusConflict, "The default account cannot be deleted")
		case errors.Is(err, store.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Account not found")
		default:
			h.log.Error().Err(err).Str("account_id", id).Msg("Failed to delete account")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete account")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// CurrenciesHandler handles currency endpoints.
type CurrenciesHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewCurrenciesHandler creates a new currencies handler.
func NewCurrenciesHandler(st *store.Store, log zerolog.Logger) *CurrenciesHandler {
	return &CurrenciesHandler{store: st, log: log}
}

// List handles GET /api/currencies
func (h *CurrenciesHandler) List(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.store.ListCurrencies()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list currencies")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list currencies")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"currencies": currencies,
		"count":      len(currencies),
	})
}

// Create handles POST /api/currencies
func (h *CurrenciesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var currency domain.Currency
	if err := json.NewDecoder(r.Body).Decode(&currency); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if currency.Code == "" || currency.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "code and name are required")
		return
	}

	if err := h.store.CreateCurrency(&currency); err != nil {
		h.log.Error().Err(err).Msg("Failed to create currency")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create currency")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, currency)
}

// UpdateRate handles PUT /api/currencies/{code}/rate
func (h *CurrenciesHandler) UpdateRate(w http.ResponseWriter, r *http.Request, code string) {
	var req struct {
		ConversionRate decimal.Decimal `json:"conversion_rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.UpdateConversionRate(code, req.ConversionRate); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Currency not found")
			return
		}
		h.log.Error().Err(err).Str("code", code).Msg("Failed to update conversion rate")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update conversion rate")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated", "code": code})
}

// SetPrimary handles POST /api/currencies/{code}/primary
func (h *CurrenciesHandler) SetPrimary(w http.ResponseWriter, r *http.Request, code string) {
	if err := h.store.SetPrimaryCurrency(code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Currency not found")
			return
		}
		h.log.Error().Err(err).Str("code", code).Msg("Failed to set primary currency")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to set primary currency")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "primary", "code": code})
}

// Delete handles DELETE /api/currencies/{code}
func (h *CurrenciesHandler) Delete(w http.ResponseWriter, r *http.Request, code string) {
	if err := h.store.DeleteCurrency(code); err != nil {
		switch {
		case errors.Is(err, store.ErrProtected):
			middleware.WriteError(w, http.StatusConflict, "The primary currency cannot be deleted")
		case errors.Is(err, store.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Currency not found")
		default:
			h.log.Error().Err(err).Str("code", code).Msg("Failed to delete currency")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete currency")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "code": code})
}
