// Package api wires the HTTP surface: one handler struct per resource, a
// plain net/http mux, and the shared middleware chain.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/porkytheblack/yuki/internal/api/handlers"
	"github.com/porkytheblack/yuki/internal/api/middleware"
	"github.com/porkytheblack/yuki/internal/jobs"
	"github.com/porkytheblack/yuki/internal/store"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Store     *store.Store
	JobStore  jobs.JobStore
	Publisher jobs.Publisher
	Log       zerolog.Logger
}

// methodNotAllowed is the shared fallback for unmatched verbs.
func methodNotAllowed(w http.ResponseWriter) {
	middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// shiftPath splits "abc/def" into "abc" and "def".
func shiftPath(p string) (head, rest string) {
	p = strings.Trim(p, "/")
	if i := strings.Index(p, "/"); i >= 0 {
		return p[:i], p[i+1:]
	}
	return p, ""
}

// NewRouter builds the full route table wrapped in the middleware chain.
func NewRouter(deps Deps) http.Handler {
	documents := handlers.NewDocumentsHandler(deps.Store, deps.Publisher, deps.Log)
	ledger := handlers.NewLedgerHandler(deps.Store, deps.Log)
	receipts := handlers.NewReceiptsHandler(deps.Store, deps.Log)
	categories := handlers.NewCategoriesHandler(deps.Store, deps.Log)
	accounts := handlers.NewAccountsHandler(deps.Store, deps.Log)
	currencies := handlers.NewCurrenciesHandler(deps.Store, deps.Log)
	settings := handlers.NewSettingsHandler(deps.Store, deps.Log)
	chat := handlers.NewChatHandler(deps.Store, deps.Log)
	jobsHandler := handlers.NewJobsHandler(deps.JobStore, deps.Log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/documents", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			documents.List(w, r)
		case http.MethodPost:
			documents.Upload(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/documents/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := shiftPath(strings.TrimPrefix(r.URL.Path, "/api/documents/"))
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Document ID is required")
			return
		}
		switch r.Method {
		case http.MethodGet:
			documents.Get(w, r, id)
		case http.MethodDelete:
			documents.Delete(w, r, id)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/ledger", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ledger.List(w, r)
		case http.MethodPost:
			ledger.Create(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/ledger/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := shiftPath(strings.TrimPrefix(r.URL.Path, "/api/ledger/"))
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Entry ID is required")
			return
		}
		switch r.Method {
		case http.MethodGet:
			ledger.Get(w, r, id)
		case http.MethodPut:
			ledger.Update(w, r, id)
		case http.MethodDelete:
			ledger.Delete(w, r, id)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/receipts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			receipts.List(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/receipts/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := shiftPath(strings.TrimPrefix(r.URL.Path, "/api/receipts/"))
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Receipt ID is required")
			return
		}
		if r.Method == http.MethodGet {
			receipts.Get(w, r, id)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/items", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			receipts.ListItems(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			categories.List(w, r)
		case http.MethodPost:
			categories.Create(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/categories/merge", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			categories.Merge(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
		id, rest := shiftPath(strings.TrimPrefix(r.URL.Path, "/api/categories/"))
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Category ID is required")
			return
		}
		switch {
		case rest == "hidden" && r.Method == http.MethodPut:
			categories.SetHidden(w, r, id)
		case rest == "" && r.Method == http.MethodPut:
			categories.Update(w, r, id)
		case rest == "" && r.Method == http.MethodDelete:
			categories.Delete(w, r, id)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			accounts.List(w, r)
		case http.MethodPost:
			accounts.Create(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/accounts/", func(w http.ResponseWriter, r *http.Request) {
		id, rest := shiftPath(strings.TrimPrefix(r.URL.Path, "/api/accounts/"))
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Account ID is required")
			return
		}
		switch {
		case rest == "default" && r.Method == http.MethodPost:
			accounts.SetDefault(w, r, id)
		case rest == "" && r.Method == http.MethodPut:
			accounts.Update(w, r, id)
		case rest == "" && r.Method == http.MethodDelete:
			accounts.Delete(w, r, id)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/currencies", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			currencies.List(w, r)
		case http.MethodPost:
			currencies.Create(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/currencies/", func(w http.ResponseWriter, r *http.Request) {
		code, rest := shiftPath(strings.TrimPrefix(r.URL.Path, "/api/currencies/"))
		if code == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Currency code is required")
			return
		}
		switch {
		case rest == "rate" && r.Method == http.MethodPut:
			currencies.UpdateRate(w, r, code)
		case rest == "primary" && r.Method == http.MethodPost:
			currencies.SetPrimary(w, r, code)
		case rest == "" && r.Method == http.MethodDelete:
			currencies.Delete(w, r, code)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/settings/provider", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			settings.GetProvider(w, r)
		case http.MethodPut:
			settings.SaveProvider(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/settings/", func(w http.ResponseWriter, r *http.Request) {
		key, rest := shiftPath(strings.TrimPrefix(r.URL.Path, "/api/settings/"))
		if key == "" || key == "provider" || rest != "" {
			middleware.WriteError(w, http.StatusNotFound, "Unknown setting")
			return
		}
		switch r.Method {
		case http.MethodGet:
			settings.GetSetting(w, r, key)
		case http.MethodPut:
			settings.SetSetting(w, r, key)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/settings/provider/test", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			settings.TestConnection(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/models", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			settings.ListModels(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/chat/message", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			chat.Message(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/chat/detect", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			chat.Detect(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/chat/history", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			chat.History(w, r)
		case http.MethodDelete:
			chat.ClearHistory(w, r)
		default:
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/chat/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			chat.Reset(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.List(w, r)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := shiftPath(strings.TrimPrefix(r.URL.Path, "/api/jobs/"))
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		if r.Method == http.MethodGet {
			jobsHandler.Get(w, r, id)
		} else {
			methodNotAllowed(w)
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return middleware.Recovery(deps.Log)(
		middleware.Logger(deps.Log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)
}
