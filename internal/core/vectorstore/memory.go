package vectorstore

import (
	"context"
	"sort"
	"sync"

	"github.com/askpdf-dev/askpdf/internal/core"
)

// Memory is an in-process VectorIndex using brute-force L2 distance. It uses
// the same distance metric and score conversion as the pgvector backend, so
// both rank identically. Safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]core.IndexEntry
}

var _ core.VectorIndex = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]core.IndexEntry)}
}

func (m *Memory) Rebuild(_ context.Context, documentID string, entries []core.IndexEntry) error {
	stored := make([]core.IndexEntry, len(entries))
	copy(stored, entries)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[documentID] = stored
	return nil
}

func (m *Memory) Query(_ context.Context, documentID string, vector []float32, topK int) ([]core.IndexHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, ok := m.collections[documentID]
	if !ok {
		return nil, &core.CollectionNotFoundError{DocumentID: documentID}
	}
	if topK <= 0 {
		topK = 5
	}

	hits := make([]core.IndexHit, 0, len(entries))
	for _, e := range entries {
		dist := core.EuclideanDistance(e.Embedding, vector)
		hits = append(hits, core.IndexHit{
			ChunkID:    e.ChunkID,
			Score:      core.DistanceToScore(dist),
			ChunkIndex: e.ChunkIndex,
			PageNumber: e.PageNumber,
			TokenCount: e.TokenCount,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (m *Memory) Drop(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[documentID]; !ok {
		return &core.CollectionNotFoundError{DocumentID: documentID}
	}
	delete(m.collections, documentID)
	return nil
}

func (m *Memory) Stats(_ context.Context, documentID string) (core.IndexStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries, ok := m.collections[documentID]
	if !ok {
		return core.IndexStats{}, nil
	}
	return core.IndexStats{Count: len(entries), Exists: true}, nil
}
