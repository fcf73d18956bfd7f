package factcheck

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch reports vectors of unequal length reaching the
// similarity scorer. It indicates a gateway or configuration contract
// violation, so the scorer fails instead of silently truncating.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// CosineSimilarity returns the cosine of the angle between a and b: their
// dot product divided by the product of their Euclidean norms. If either
// vector has zero magnitude the similarity is defined as 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
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
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
