package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/porkytheblack/yuki/internal/api/middleware"
	"github.com/porkytheblack/yuki/internal/jobs"
	"github.com/porkytheblack/yuki/internal/store"
)

// maxUploadBytes caps a single document upload at 32 MiB.
const maxUploadBytes = 32 << 20

// DocumentsHandler handles document-related endpoints.
type DocumentsHandler struct {
	store     *store.Store
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(st *store.Store, publisher jobs.Publisher, log zerolog.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		store:     st,
		publisher: publisher,
		log:       log,
	}
}

// Upload handles POST /api/documents. The file arrives as multipart form
// data with a document_type field; extraction happens on the job worker, so
// the response is just the queued job.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	docType := r.FormValue("document_type")
	if docType == "" {
		middleware.WriteError(w, http.StatusBadRequest, "document_type is required (statement or receipt)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read upload")
		return
	}
	if len(data) > maxUploadBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File exceeds the upload limit")
		return
	}
	if len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Uploaded file is empty")
		return
	}

	// Duplicate content is rejected up front. The pipeline re-checks under
	// the unique index, this just gives the caller a synchronous 409.
	hash := sha256.Sum256(data)
	if existing, err := h.store.DocumentByHash(hex.EncodeToString(hash[:])); err == nil && existing != nil {
		middleware.WriteError(w, http.StatusConflict, "This document was already uploaded")
		return
	}

	job := &jobs.ProcessDocumentJob{
		Filename:     filepath.Base(header.Filename),
		DocumentType: docType,
		Data:         data,
	}

	if err := h.publisher.PublishProcessDocument(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue document job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue document for processing")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("filename", job.Filename).
		Str("document_type", docType).
		Msg("Document queued for processing")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":   job.JobID,
		"filename": job.Filename,
		"status":   string(job.Status),
	})
}

// List handles GET /api/documents
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	documents, err := h.store.ListDocuments()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list documents")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": documents,
		"count":     len(documents),
	})
}

// Get handles GET /api/documents/{id}
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := h.store.GetDocument(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.log.Error().Err(err).Str("document_id", id).Msg("Failed to get document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get document")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /api/documents/{id}. The cascade removes the
// document's ledger entries, receipts, and purchased items with it; the
// stored file goes last, best-effort.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := h.store.GetDocument(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.log.Error().Err(err).Str("document_id", id).Msg("Failed to get document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	if err := h.store.DeleteDocument(id); err != nil {
		h.log.Error().Err(err).Str("document_id", id).Msg("Failed to delete document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	if doc.Filepath != "" {
		if err := os.Remove(doc.Filepath); err != nil && !os.IsNotExist(err) {
			h.log.Warn().Err(err).Str("path", doc.Filepath).Msg("Failed to remove stored file")
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "document_id": id})
}
