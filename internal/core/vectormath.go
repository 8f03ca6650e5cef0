package core

import "math"

// CosineSimilarity returns the cosine of the angle between a and b: dot
// product over the product of L2 norms. It is undefined when either vector
// has zero norm, which signals corrupt upstream data.
func CosineSimilarity(a, b []float32) (float64, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, &DegenerateVectorError{}
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// EuclideanDistance returns the L2 distance between a and b. Shorter vector
// positions beyond the common prefix are treated as zero.
func EuclideanDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(a) {
			x = float64(a[i])
		}
		if i < len(b) {
			y = float64(b[i])
		}
		d := x - y
		sum += d * d
	}
	return math.Sqrt(sum)
}

// DistanceToScore converts a non-negative distance into a similarity score in
// (0, 1], strictly decreasing in distance. Both vector backends use L2
// distance, so the precondition always holds.
func DistanceToScore(distance float64) float64 {
	return 1 / (1 + distance)
}
