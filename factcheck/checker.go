package factcheck

import (
	"context"
	"fmt"
	"log"

	"github.com/fabfab/papercast/embeddings"
)

const (
	DefaultChunkSize      = 500
	DefaultValidThreshold = 0.7
	DefaultPassThreshold  = 0.75
)

// Status classifies a single chunk or a whole report.
type Status string

const (
	StatusValid       Status = "VALID"
	StatusNeedsReview Status = "NEEDS_REVIEW"
	StatusPassed      Status = "PASSED"
	StatusFailed      Status = "FAILED"
)

// ChunkValidation holds the verdict for one generated chunk: the source
// chunk it matched best, the similarity of that match, and the resulting
// classification. BestMatch is nil when the source produced no chunks.
type ChunkValidation struct {
	Chunk      Chunk
	BestMatch  *Chunk
	Similarity float64
	Status     Status

	// Embedding is the generated chunk's vector, kept so callers can
	// persist it without a second embedding call.
	Embedding []float32
}

// Report is the aggregate verdict for a generated script.
type Report struct {
	OverallSimilarity float64
	Status            Status
	Chunks            []ChunkValidation
	FactualAccuracy   float64
}

type Options struct {
	ChunkSize      int
	ValidThreshold float64
	PassThreshold  float64
}

type Checker struct {
	embedder embeddings.Embedder
	logger   *log.Logger
	opts     Options
}

func New(embedder embeddings.Embedder, logger *log.Logger, opts Options) *Checker {
	if logger == nil {
		logger = log.Default()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ValidThreshold <= 0 {
		opts.ValidThreshold = DefaultValidThreshold
	}
	if opts.PassThreshold <= 0 {
		opts.PassThreshold = DefaultPassThreshold
	}

	return &Checker{
		embedder: embedder,
		logger:   logger,
		opts:     opts,
	}
}

// Validate chunks both texts, embeds all chunks in a single gateway call
// (generated chunks first, then source chunks, each in original order),
// and classifies every generated chunk by its best-matching source chunk.
//
// An embedding failure aborts the whole call with no partial report. A
// dimension mismatch between any vector pair does the same: one corrupt
// vector means the gateway broke its contract, so the report is not
// trustworthy and the call fails fast rather than skipping bad pairs.
func (c *Checker) Validate(ctx context.Context, generated, source string) (Report, error) {
	if c.embedder == nil {
		return Report{}, fmt.Errorf("embedder not configured")
	}

	generatedChunks := SplitWords(generated, c.opts.ChunkSize, KindGenerated)
	if len(generatedChunks) == 0 {
		// Nothing to validate; an empty script can never pass.
		return Report{Status: StatusFailed}, nil
	}

	sourceChunks := SplitWords(source, c.opts.ChunkSize, KindSource)

	texts := make([]string, 0, len(generatedChunks)+len(sourceChunks))
	for _, chunk := range generatedChunks {
		texts = append(texts, chunk.Text)
	}
	for _, chunk := range sourceChunks {
		texts = append(texts, chunk.Text)
	}

	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return Report{}, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return Report{}, fmt.Errorf("embedding count mismatch: sent %d chunks, got %d vectors", len(texts), len(vectors))
	}

	generatedVectors := vectors[:len(generatedChunks)]
	sourceVectors := vectors[len(generatedChunks):]

	validations := make([]ChunkValidation, 0, len(generatedChunks))
	var total float64

	for i, vec := range generatedVectors {
		maxSimilarity := 0.0
		bestIdx := -1

		for j, sourceVec := range sourceVectors {
			similarity, simErr := CosineSimilarity(vec, sourceVec)
			if simErr != nil {
				return Report{}, fmt.Errorf("score generated chunk %d against source chunk %d: %w", i, j, simErr)
			}
			if similarity > maxSimilarity {
				maxSimilarity = similarity
				bestIdx = j
			}
		}

		status := StatusNeedsReview
		if maxSimilarity > c.opts.ValidThreshold {
			status = StatusValid
		}

		var bestMatch *Chunk
		if bestIdx >= 0 {
			match := sourceChunks[bestIdx]
			bestMatch = &match
		}

		validations = append(validations, ChunkValidation{
			Chunk:      generatedChunks[i],
			BestMatch:  bestMatch,
			Similarity: maxSimilarity,
			Status:     status,
			Embedding:  vec,
		})
		total += maxSimilarity
	}

	overall := total / float64(len(validations))
	status := StatusFailed
	if overall > c.opts.PassThreshold {
		status = StatusPassed
	}

	c.logger.Printf("fact-check scored %d generated chunks against %d source chunks: %.3f overall (%s)",
		len(generatedChunks), len(sourceChunks), overall, status)

	return Report{
		OverallSimilarity: overall,
		Status:            status,
		Chunks:            validations,
		FactualAccuracy:   overall * 100,
	}, nil
}
