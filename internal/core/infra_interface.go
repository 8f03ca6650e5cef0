package core

import (
	"context"
	"io"
	"time"

	"github.com/askpdf-dev/askpdf/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	// ClaimProcessing flips the document to processing unless it already is.
	// It reports false when another ingestion holds the document, which is how
	// concurrent rebuilds of the same document are rejected.
	ClaimProcessing(ctx context.Context, id string) (bool, error)
	MarkCompleted(ctx context.Context, id string, pageCount int, processedAt time.Time) error
	MarkFailed(ctx context.Context, id string, errorMessage string) error

	// ReplaceDocumentChunks atomically swaps the document's chunk set: the old
	// chunks are deleted and the new ones inserted in a single transaction, so
	// readers never observe a partial set.
	ReplaceDocumentChunks(ctx context.Context, documentID string, chunks []models.DocumentChunk) error
	GetChunksByDocument(ctx context.Context, documentID string) ([]models.DocumentChunk, error)
	GetChunksByIDs(ctx context.Context, ids []string) ([]models.DocumentChunk, error)
	CountChunksByDocument(ctx context.Context, documentID string) (int, error)

	AddChatMessage(ctx context.Context, msg *models.ChatMessage) error
	GetChatHistory(ctx context.Context, documentID, userID string, limit int) ([]models.ChatMessage, error)
	ClearChatHistory(ctx context.Context, documentID, userID string) (int64, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so AWS can be replaced with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)

	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
