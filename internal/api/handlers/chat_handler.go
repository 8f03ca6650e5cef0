package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/askpdf-dev/askpdf/internal/api/middlewares"
	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
	TopK       int    `json:"top_k"`
}

// Query answers one question about a document and records the exchange.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &core.ValidationError{Msg: "invalid body"})
		return
	}

	answer, err := h.chat.AskQuestion(r.Context(), req.DocumentID, userID, req.Question, req.TopK)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// History returns the caller's conversation with a document, oldest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	docID := r.URL.Query().Get("document_id")
	if docID == "" {
		writeError(w, &core.ValidationError{Msg: "document_id query parameter is required"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.chat.GetHistory(r.Context(), docID, userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": docID,
		"messages":    messages,
	})
}

// ClearHistory deletes the caller's conversation with a document.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	docID := r.URL.Query().Get("document_id")
	if docID == "" {
		writeError(w, &core.ValidationError{Msg: "document_id query parameter is required"})
		return
	}

	deleted, err := h.chat.ClearHistory(r.Context(), docID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": docID,
		"deleted":     deleted,
	})
}
