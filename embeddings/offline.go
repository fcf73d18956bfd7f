package embeddings

import (
	"context"
	"crypto/md5"
)

const defaultOfflineDimension = 1024

type offlineEmbedder struct {
	dimension int
}

// NewOfflineEmbedder derives each vector from an MD5 hash of the input
// text, so the same text always maps to the same vector. That keeps
// similarity scoring reproducible in tests without a live backend.
func NewOfflineEmbedder(opts Options) Embedder {
	dimension := opts.Dimension
	if dimension <= 0 {
		dimension = defaultOfflineDimension
	}
	return &offlineEmbedder{dimension: dimension}
}

func (e *offlineEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([][]float32, len(texts))
	for i, text := range texts {
		sum := md5.Sum([]byte(text))

		vec := make([]float32, e.dimension)
		for j := range vec {
			// Cycle through the digest bytes, normalized to [-0.5, 0.5].
			vec[j] = float32(sum[j%len(sum)])/255.0 - 0.5
		}
		results[i] = vec
	}

	return results, nil
}
