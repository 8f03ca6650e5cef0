package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/askpdf-dev/askpdf/internal/config"
	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db, cfg.EmbedDim); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// DB exposes the underlying pool for components that share the connection,
// such as the pgvector index.
func (c *DatabaseClient) DB() *sql.DB { return c.db }

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for user

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.FirstName, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for Document

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, user_id, title, file_name, storage_url, file_size, page_count, status, uploaded_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.UserID, doc.Title, doc.FileName, doc.StorageURL, doc.FileSize,
		doc.PageCount, doc.Status, doc.UploadedAt)
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, user_id, title, file_name, storage_url, file_size, page_count,
		       status, error_message, uploaded_at, processed_at
		FROM documents
		WHERE id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.UserID, &d.Title, &d.FileName, &d.StorageURL, &d.FileSize,
		&d.PageCount, &d.Status, &d.ErrorMessage, &d.UploadedAt, &d.ProcessedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	const q = `
		SELECT id, user_id, title, file_name, storage_url, file_size, page_count,
		       status, error_message, uploaded_at, processed_at
		FROM documents
		WHERE user_id = $1
		ORDER BY uploaded_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Title, &d.FileName, &d.StorageURL, &d.FileSize,
			&d.PageCount, &d.Status, &d.ErrorMessage, &d.UploadedAt, &d.ProcessedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteDocument(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &core.NotFoundError{Resource: "document", ID: id}
	}
	return nil
}

// ClaimProcessing is the advisory gate against interleaved rebuilds: the
// UPDATE succeeds for at most one caller while the document is processing.
func (c *DatabaseClient) ClaimProcessing(ctx context.Context, id string) (bool, error) {
	const q = `
		UPDATE documents
		SET status = 'processing', error_message = NULL, processed_at = NULL
		WHERE id = $1 AND status <> 'processing'
	`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (c *DatabaseClient) MarkCompleted(ctx context.Context, id string, pageCount int, processedAt time.Time) error {
	const q = `
		UPDATE documents
		SET status = 'completed', page_count = $2, processed_at = $3, error_message = NULL
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, pageCount, processedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &core.NotFoundError{Resource: "document", ID: id}
	}
	return nil
}

func (c *DatabaseClient) MarkFailed(ctx context.Context, id string, errorMessage string) error {
	const q = `
		UPDATE documents
		SET status = 'failed', error_message = $2
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, errorMessage)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &core.NotFoundError{Resource: "document", ID: id}
	}
	return nil
}

// Implementing the db interface for Document Chunks

// ReplaceDocumentChunks swaps the whole chunk set in one transaction so a
// reader never sees a mix of old and new chunks.
func (c *DatabaseClient) ReplaceDocumentChunks(ctx context.Context, documentID string, chunks []models.DocumentChunk) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID); err != nil {
		_ = tx.Rollback()
		return err
	}

	const q = `
		INSERT INTO document_chunks
			(id, document_id, chunk_index, content, page_number, token_count, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		var emb any
		if ch.Embedding != nil {
			emb = pgvector.NewVector(ch.Embedding)
		}
		if _, err := stmt.ExecContext(ctx,
			ch.ID, documentID, ch.ChunkIndex, ch.Content, ch.PageNumber, ch.TokenCount, emb, ch.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (c *DatabaseClient) GetChunksByDocument(ctx context.Context, documentID string) ([]models.DocumentChunk, error) {
	const q = `
		SELECT id, document_id, chunk_index, content, page_number, token_count, created_at
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY chunk_index ASC
	`
	rows, err := c.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunks(rows)
}

func (c *DatabaseClient) GetChunksByIDs(ctx context.Context, ids []string) ([]models.DocumentChunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := fmt.Sprintf(`
		SELECT id, document_id, chunk_index, content, page_number, token_count, created_at
		FROM document_chunks
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunks(rows)
}

func (c *DatabaseClient) CountChunksByDocument(ctx context.Context, documentID string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT count(*) FROM document_chunks WHERE document_id = $1`, documentID).Scan(&n)
	return n, err
}

func scanChunks(rows *sql.Rows) ([]models.DocumentChunk, error) {
	var out []models.DocumentChunk
	for rows.Next() {
		var ch models.DocumentChunk
		if err := rows.Scan(
			&ch.ID, &ch.DocumentID, &ch.ChunkIndex, &ch.Content, &ch.PageNumber, &ch.TokenCount, &ch.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// Implementing the db interface for Chat Messages

func (c *DatabaseClient) AddChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil chat message")
	}
	var sources any
	if msg.Sources != nil {
		b, err := json.Marshal(msg.Sources)
		if err != nil {
			return fmt.Errorf("marshal sources: %w", err)
		}
		sources = b
	}
	const q = `
		INSERT INTO chat_messages (id, document_id, user_id, role, content, sources, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		msg.ID, msg.DocumentID, msg.UserID, msg.Role, msg.Content, sources, msg.CreatedAt)
	return err
}

func (c *DatabaseClient) GetChatHistory(ctx context.Context, documentID, userID string, limit int) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, document_id, user_id, role, content, sources, created_at
		FROM chat_messages
		WHERE document_id = $1 AND user_id = $2
		ORDER BY created_at ASC, seq ASC
		LIMIT $3
	`
	rows, err := c.db.QueryContext(ctx, q, documentID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var (
			m   models.ChatMessage
			raw []byte
		)
		if err := rows.Scan(&m.ID, &m.DocumentID, &m.UserID, &m.Role, &m.Content, &raw, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &m.Sources); err != nil {
				return nil, fmt.Errorf("unmarshal sources: %w", err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) ClearChatHistory(ctx context.Context, documentID, userID string) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM chat_messages WHERE document_id = $1 AND user_id = $2`, documentID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
