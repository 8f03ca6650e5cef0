package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpdf-dev/askpdf/internal/core"
)

func seedEntries() []core.IndexEntry {
	page2 := 2
	return []core.IndexEntry{
		{ChunkID: "c0", Embedding: []float32{1, 0}, ChunkIndex: 0, TokenCount: 10},
		{ChunkID: "c1", Embedding: []float32{0, 1}, ChunkIndex: 1, PageNumber: &page2, TokenCount: 20},
		{ChunkID: "c2", Embedding: []float32{-1, 0}, ChunkIndex: 2, TokenCount: 30},
	}
}

func TestMemoryQueryRanksByDistance(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Rebuild(ctx, "doc", seedEntries()))

	hits, err := m.Query(ctx, "doc", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "c0", hits[0].ChunkID)
	assert.Equal(t, 1.0, hits[0].Score)
	assert.Equal(t, "c1", hits[1].ChunkID)
	assert.Equal(t, "c2", hits[2].ChunkID)

	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
	for _, h := range hits {
		assert.Greater(t, h.Score, 0.0)
		assert.LessOrEqual(t, h.Score, 1.0)
	}
}

func TestMemoryQueryTopK(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Rebuild(ctx, "doc", seedEntries()))

	hits, err := m.Query(ctx, "doc", []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestMemoryQueryCarriesMetadata(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Rebuild(ctx, "doc", seedEntries()))

	hits, err := m.Query(ctx, "doc", []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].ChunkID)
	assert.Equal(t, 1, hits[0].ChunkIndex)
	require.NotNil(t, hits[0].PageNumber)
	assert.Equal(t, 2, *hits[0].PageNumber)
	assert.Equal(t, 20, hits[0].TokenCount)
}

func TestMemoryQueryUnknownDocument(t *testing.T) {
	m := NewMemory()
	_, err := m.Query(context.Background(), "nope", []float32{1}, 5)

	var missing *core.CollectionNotFoundError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "nope", missing.DocumentID)
}

func TestMemoryRebuildReplacesCollection(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Rebuild(ctx, "doc", seedEntries()))
	require.NoError(t, m.Rebuild(ctx, "doc", seedEntries()[:1]))

	stats, err := m.Stats(ctx, "doc")
	require.NoError(t, err)
	assert.True(t, stats.Exists)
	assert.Equal(t, 1, stats.Count)
}

func TestMemoryDrop(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Rebuild(ctx, "doc", seedEntries()))
	require.NoError(t, m.Drop(ctx, "doc"))

	stats, err := m.Stats(ctx, "doc")
	require.NoError(t, err)
	assert.False(t, stats.Exists)

	var missing *core.CollectionNotFoundError
	require.ErrorAs(t, m.Drop(ctx, "doc"), &missing)
}
