package models

import (
	"time"
)

// Document lifecycle states. Transitions only move forward, except that a
// failed document may be re-ingested, which restarts at processing.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Document represents one uploaded PDF and its processing lifecycle.
// PageCount is authoritative only once Status is completed; ErrorMessage is
// set only when Status is failed.
type Document struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"user_id"`
	Title        string     `db:"title" json:"title"`
	FileName     string     `db:"file_name" json:"file_name"`
	StorageURL   string     `db:"storage_url" json:"storage_url"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	PageCount    int        `db:"page_count" json:"page_count"`
	Status       string     `db:"status" json:"status"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
	UploadedAt   time.Time  `db:"uploaded_at" json:"uploaded_at"`
	ProcessedAt  *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

// DocumentChunk is one bounded slice of a document's extracted text, the unit
// of embedding and retrieval. ChunkIndex is zero-based and unique within the
// document; Embedding is nil until the embedding stage has run.
type DocumentChunk struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	ChunkIndex int       `db:"chunk_index" json:"chunk_index"`
	Content    string    `db:"content" json:"content"`
	PageNumber *int      `db:"page_number" json:"page_number,omitempty"`
	TokenCount int       `db:"token_count" json:"token_count"`
	Embedding  []float32 `db:"embedding" json:"-"` // pgvector column
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ChatMessage is one immutable entry in a (document, user) conversation.
// Sources holds the chunk IDs an assistant answer was grounded on; it is
// empty for user messages.
type ChatMessage struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Role       string    `db:"role" json:"role"`
	Content    string    `db:"content" json:"content"`
	Sources    []string  `db:"sources" json:"sources,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
