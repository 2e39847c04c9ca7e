package core

import "math"

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 when the vectors have different lengths or either norm is zero.
// Accumulation is done in float64 to keep the result stable independent of
// vector length.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// MeanSimilarity computes the average cosine similarity between query and a
// set of reference vectors. Returns 0 for an empty reference set.
func MeanSimilarity(query []float32, refs [][]float32) float64 {
	if len(refs) == 0 {
		return 0
	}

	var total float64
	for _, ref := range refs {
		total += CosineSimilarity(query, ref)
	}
	return total / float64(len(refs))
}
