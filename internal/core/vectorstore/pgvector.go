// Package vectorstore holds the per-document vector collections behind the
// core.VectorIndex contract. Each document gets one named collection; rebuild
// is drop-then-populate, never an in-place update.
package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/logger"
)

// PgVector keeps one physical table per document on the shared Postgres pool.
// L2 distance (`<->`) is used for ranking; it is non-negative, so the
// 1/(1+distance) score stays in (0, 1].
type PgVector struct {
	db  *sql.DB
	dim int
}

var _ core.VectorIndex = (*PgVector)(nil)

func NewPgVector(db *sql.DB, dim int) *PgVector {
	if dim <= 0 {
		dim = 768
	}
	return &PgVector{db: db, dim: dim}
}

// collectionName maps a document ID onto its table name. Only [a-z0-9] from
// the ID survive, which keeps the generated identifier safe to interpolate.
func collectionName(documentID string) string {
	var b strings.Builder
	b.WriteString("doc_vectors_")
	for _, r := range strings.ToLower(documentID) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (p *PgVector) exists(ctx context.Context, table string) (bool, error) {
	var reg sql.NullString
	if err := p.db.QueryRowContext(ctx, `SELECT to_regclass($1)`, table).Scan(&reg); err != nil {
		return false, fmt.Errorf("check collection: %w", err)
	}
	return reg.Valid, nil
}

// Rebuild drops any existing collection for the document and repopulates a
// fresh one in a single transaction.
func (p *PgVector) Rebuild(ctx context.Context, documentID string, entries []core.IndexEntry) error {
	table := collectionName(documentID)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("drop collection: %w", err)
	}

	dim := p.dim
	if len(entries) > 0 && len(entries[0].Embedding) > 0 {
		dim = len(entries[0].Embedding)
	}
	createStmt := fmt.Sprintf(`
		CREATE TABLE %s (
			chunk_id    UUID PRIMARY KEY,
			embedding   VECTOR(%d) NOT NULL,
			chunk_index INT NOT NULL,
			page_number INT,
			token_count INT NOT NULL
		)`, table, dim)
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create collection: %w", err)
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (chunk_id, embedding, chunk_index, page_number, token_count)
		VALUES ($1, $2, $3, $4, $5)`, table)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.ChunkID, pgvector.NewVector(e.Embedding), e.ChunkIndex, e.PageNumber, e.TokenCount,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert vector: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	logger.Infof("vectorstore: rebuilt collection %s with %d vectors", table, len(entries))
	return nil
}

func (p *PgVector) Query(ctx context.Context, documentID string, vector []float32, topK int) ([]core.IndexHit, error) {
	table := collectionName(documentID)
	ok, err := p.exists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &core.CollectionNotFoundError{DocumentID: documentID}
	}
	if topK <= 0 {
		topK = 5
	}

	q := fmt.Sprintf(`
		SELECT chunk_id, chunk_index, page_number, token_count, embedding <-> $1 AS distance
		FROM %s
		ORDER BY distance ASC
		LIMIT $2`, table)
	rows, err := p.db.QueryContext(ctx, q, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	defer rows.Close()

	var hits []core.IndexHit
	for rows.Next() {
		var (
			h    core.IndexHit
			dist float64
		)
		if err := rows.Scan(&h.ChunkID, &h.ChunkIndex, &h.PageNumber, &h.TokenCount, &dist); err != nil {
			return nil, err
		}
		h.Score = core.DistanceToScore(dist)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (p *PgVector) Drop(ctx context.Context, documentID string) error {
	table := collectionName(documentID)
	ok, err := p.exists(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		return &core.CollectionNotFoundError{DocumentID: documentID}
	}
	if _, err := p.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE %s`, table)); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	return nil
}

func (p *PgVector) Stats(ctx context.Context, documentID string) (core.IndexStats, error) {
	table := collectionName(documentID)
	ok, err := p.exists(ctx, table)
	if err != nil {
		return core.IndexStats{}, err
	}
	if !ok {
		return core.IndexStats{}, nil
	}
	var count int
	if err := p.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, table)).Scan(&count); err != nil {
		return core.IndexStats{}, err
	}
	return core.IndexStats{Count: count, Exists: true}, nil
}
