package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/askpdf-dev/askpdf/internal/api/middlewares"
	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/services"
)

type SearchHandler struct {
	docs   *services.DocumentService
	search *services.SearchService
}

func NewSearchHandler(docs *services.DocumentService, search *services.SearchService) *SearchHandler {
	return &SearchHandler{docs: docs, search: search}
}

type searchRequest struct {
	DocumentID string `json:"document_id"`
	Query      string `json:"query"`
	TopK       int    `json:"top_k"`
}

// Search returns the chunks of one document most similar to the query.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &core.ValidationError{Msg: "invalid body"})
		return
	}

	// The ownership check lives here; the search service itself is
	// caller-agnostic.
	if _, err := h.docs.Get(r.Context(), req.DocumentID, userID); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.search.SearchDocument(r.Context(), req.DocumentID, req.Query, req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
