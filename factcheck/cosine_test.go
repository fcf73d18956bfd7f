package factcheck

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	vec := []float32{0.3, -0.2, 0.9, 0.1}

	got, err := CosineSimilarity(vec, vec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1.0) > 1e-6 {
		t.Fatalf("self similarity = %f, want 1.0", got)
	}
}

func TestCosineSimilarityOrthogonalVectors(t *testing.T) {
	got, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("orthogonal similarity = %f, want 0", got)
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := []float32{0.5, 0.1, -0.3}
	b := []float32{-0.2, 0.8, 0.4}

	ab, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := CosineSimilarity(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ab-ba) > 1e-12 {
		t.Fatalf("similarity not symmetric: %f vs %f", ab, ba)
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	got, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("zero vector similarity = %f, want 0", got)
	}
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for mismatched dimensions")
	}
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}
