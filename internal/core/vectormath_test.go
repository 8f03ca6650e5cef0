package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarityBounds(t *testing.T) {
	a := []float32{1, 0, 0}

	same, err := CosineSimilarity(a, []float32{2, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, same, 1e-9)

	orthogonal, err := CosineSimilarity(a, []float32{0, 3, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, orthogonal, 1e-9)

	opposite, err := CosineSimilarity(a, []float32{-1, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, opposite, 1e-9)
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	_, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
	var degenerate *DegenerateVectorError
	require.ErrorAs(t, err, &degenerate)

	_, err = CosineSimilarity([]float32{1, 2, 3}, []float32{0, 0, 0})
	require.ErrorAs(t, err, &degenerate)
}

func TestEuclideanDistance(t *testing.T) {
	assert.InDelta(t, 0.0, EuclideanDistance([]float32{1, 2}, []float32{1, 2}), 1e-9)
	assert.InDelta(t, 5.0, EuclideanDistance([]float32{0, 0}, []float32{3, 4}), 1e-9)

	// Positions past the shorter vector count as zero.
	assert.InDelta(t, 4.0, EuclideanDistance([]float32{3}, []float32{3, 4}), 1e-9)
}

func TestDistanceToScore(t *testing.T) {
	assert.Equal(t, 1.0, DistanceToScore(0))

	// Strictly decreasing, always in (0, 1].
	prev := 2.0
	for _, d := range []float64{0, 0.1, 1, 5, 100} {
		s := DistanceToScore(d)
		assert.Greater(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.Less(t, s, prev)
		prev = s
	}
}
