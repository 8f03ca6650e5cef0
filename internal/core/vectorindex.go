package core

import "context"

// IndexEntry is one chunk vector plus the denormalized metadata stored
// alongside it, so ranking needs no second relational lookup.
type IndexEntry struct {
	ChunkID    string
	Embedding  []float32
	ChunkIndex int
	PageNumber *int
	TokenCount int
}

// IndexHit is one nearest-neighbor result. Score is in (0, 1] and decreases
// with distance.
type IndexHit struct {
	ChunkID    string
	Score      float64
	ChunkIndex int
	PageNumber *int
	TokenCount int
}

// IndexStats describes a document's collection.
type IndexStats struct {
	Count  int
	Exists bool
}

// VectorIndex stores one collection of chunk vectors per document and answers
// nearest-neighbor queries against it. Rebuild drops any existing collection
// before repopulating; the ingestion orchestrator's lifecycle ordering, not
// the index, makes that swap invisible to readers.
type VectorIndex interface {
	Rebuild(ctx context.Context, documentID string, entries []IndexEntry) error
	Query(ctx context.Context, documentID string, vector []float32, topK int) ([]IndexHit, error)
	Drop(ctx context.Context, documentID string) error
	Stats(ctx context.Context, documentID string) (IndexStats, error)
}
