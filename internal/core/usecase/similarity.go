package usecase

import "math"

// ItemNameSimilarityThreshold is the minimum cosine similarity at which a raw
// name joins an existing cluster.
const ItemNameSimilarityThreshold = 0.93

// CosineSimilarity returns dot(a,b)/(|a|*|b|). Vectors of different length or
// zero norm score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	default:
		return sim
	}
}
