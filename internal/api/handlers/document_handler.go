package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/askpdf-dev/askpdf/internal/api/middlewares"
	"github.com/askpdf-dev/askpdf/internal/config"
	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/services"
)

type DocumentHandler struct {
	docs *services.DocumentService
	cfg  *config.Config
}

func NewDocumentHandler(docs *services.DocumentService, cfg *config.Config) *DocumentHandler {
	return &DocumentHandler{docs: docs, cfg: cfg}
}

// Upload accepts a multipart PDF, stores it and queues ingestion. The
// response carries the pending document; processing happens in the
// background.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		writeError(w, &core.ValidationError{Msg: "invalid multipart body or file too large"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, &core.ValidationError{Msg: "a 'file' form field is required"})
		return
	}
	defer file.Close()

	doc, err := h.docs.Upload(r.Context(), userID, header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"document_id": doc.ID,
		"title":       doc.Title,
		"status":      doc.Status,
	})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	docs, err := h.docs.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	status, err := h.docs.Status(r.Context(), chi.URLParam(r, "documentID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *DocumentHandler) Reingest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	docID := chi.URLParam(r, "documentID")
	if err := h.docs.Reingest(r.Context(), docID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"document_id": docID, "status": "queued"})
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.docs.Delete(r.Context(), chi.URLParam(r, "documentID"), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
