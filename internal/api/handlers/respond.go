package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to HTTP statuses. Backend failures
// (extraction, embedding, generation) surface as a generic 502; the detail
// stays in the log.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *core.ValidationError
		notFound   *core.NotFoundError
		access     *core.AccessError
		notReady   *core.NotReadyError
		embedding  *core.EmbeddingError
		generation *core.GenerationError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Msg})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
	case errors.As(err, &access):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": access.Error()})
	case errors.As(err, &notReady):
		writeJSON(w, http.StatusConflict, map[string]string{"error": notReady.Error()})
	case errors.As(err, &embedding), errors.As(err, &generation):
		logger.Errorf("api: backend failure: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "the AI backend is unavailable, try again later"})
	default:
		logger.Errorf("api: internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
