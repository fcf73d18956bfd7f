package factcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"testing"

	"github.com/fabfab/papercast/embeddings"
)

type stubEmbedder struct {
	vectors [][]float32
	err     error
	calls   int
	texts   []string
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	s.texts = append([]string(nil), texts...)
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestValidateIdenticalTextPasses(t *testing.T) {
	embedder := embeddings.NewOfflineEmbedder(embeddings.Options{Dimension: 64})
	checker := New(embedder, testLogger(), Options{ChunkSize: 4})

	text := "gradient descent converges under these mild assumptions"
	report, err := checker.Validate(context.Background(), text, text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Status != StatusPassed {
		t.Fatalf("status = %s, want %s", report.Status, StatusPassed)
	}
	if math.Abs(report.OverallSimilarity-1.0) > 1e-6 {
		t.Errorf("overall similarity = %f, want 1.0", report.OverallSimilarity)
	}
	if math.Abs(report.FactualAccuracy-100.0) > 1e-4 {
		t.Errorf("factual accuracy = %f, want 100", report.FactualAccuracy)
	}
	for _, validation := range report.Chunks {
		if validation.Status != StatusValid {
			t.Errorf("chunk %d status = %s, want %s", validation.Chunk.Index, validation.Status, StatusValid)
		}
		if validation.BestMatch == nil {
			t.Errorf("chunk %d has no best match", validation.Chunk.Index)
		}
		if len(validation.Embedding) != 64 {
			t.Errorf("chunk %d embedding dimension = %d, want 64", validation.Chunk.Index, len(validation.Embedding))
		}
	}
}

func TestValidateUnrelatedVectorsFail(t *testing.T) {
	embedder := &stubEmbedder{vectors: [][]float32{
		{1, 0},
		{0, 1},
	}}
	checker := New(embedder, testLogger(), Options{ChunkSize: 10})

	report, err := checker.Validate(context.Background(), "generated claim", "source statement")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", report.Status, StatusFailed)
	}
	if len(report.Chunks) != 1 {
		t.Fatalf("expected 1 chunk validation, got %d", len(report.Chunks))
	}
	if report.Chunks[0].Status != StatusNeedsReview {
		t.Errorf("chunk status = %s, want %s", report.Chunks[0].Status, StatusNeedsReview)
	}
	if report.Chunks[0].BestMatch != nil {
		t.Errorf("expected no best match when no source chunk scores above zero")
	}
}

func TestValidateEmptyGeneratedText(t *testing.T) {
	embedder := &stubEmbedder{}
	checker := New(embedder, testLogger(), Options{})

	report, err := checker.Validate(context.Background(), "   \n ", "a source paper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Status != StatusFailed {
		t.Fatalf("status = %s, want %s", report.Status, StatusFailed)
	}
	if report.OverallSimilarity != 0 {
		t.Errorf("overall similarity = %f, want 0", report.OverallSimilarity)
	}
	if len(report.Chunks) != 0 {
		t.Errorf("expected no chunk validations, got %d", len(report.Chunks))
	}
	if embedder.calls != 0 {
		t.Errorf("expected no embedding calls, got %d", embedder.calls)
	}
}

func TestValidateEmbeddingFailureAborts(t *testing.T) {
	embedder := &stubEmbedder{err: fmt.Errorf("%w: connection refused", embeddings.ErrServiceUnavailable)}
	checker := New(embedder, testLogger(), Options{})

	report, err := checker.Validate(context.Background(), "generated text", "source text")
	if err == nil {
		t.Fatal("expected error when embedding fails")
	}
	if !errors.Is(err, embeddings.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if len(report.Chunks) != 0 || report.OverallSimilarity != 0 {
		t.Fatalf("expected empty report on failure, got %+v", report)
	}
}

func TestValidateSingleBatchedCallGeneratedFirst(t *testing.T) {
	embedder := &stubEmbedder{vectors: [][]float32{
		{1, 0}, {1, 0},
		{1, 0},
	}}
	checker := New(embedder, testLogger(), Options{ChunkSize: 2})

	_, err := checker.Validate(context.Background(), "g1 g2 g3", "s1 s2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if embedder.calls != 1 {
		t.Fatalf("expected a single embedding call, got %d", embedder.calls)
	}
	want := []string{"g1 g2", "g3", "s1 s2"}
	if len(embedder.texts) != len(want) {
		t.Fatalf("embedded %d texts, want %d", len(embedder.texts), len(want))
	}
	for i, text := range want {
		if embedder.texts[i] != text {
			t.Errorf("text %d = %q, want %q", i, embedder.texts[i], text)
		}
	}
}

func TestValidateDimensionMismatchFailsFast(t *testing.T) {
	embedder := &stubEmbedder{vectors: [][]float32{
		{1, 0, 0},
		{1, 0},
	}}
	checker := New(embedder, testLogger(), Options{ChunkSize: 10})

	_, err := checker.Validate(context.Background(), "generated", "source")
	if err == nil {
		t.Fatal("expected error for mismatched vector dimensions")
	}
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestValidateVectorCountMismatch(t *testing.T) {
	embedder := &stubEmbedder{vectors: [][]float32{{1, 0}}}
	checker := New(embedder, testLogger(), Options{ChunkSize: 10})

	_, err := checker.Validate(context.Background(), "generated", "source")
	if err == nil {
		t.Fatal("expected error when the embedder returns too few vectors")
	}
}
