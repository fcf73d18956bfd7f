package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type nvidiaEmbedder struct {
	endpoint  string
	apiKey    string
	model     string
	dimension int
	client    *http.Client
}

type nimEmbeddingRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	EncodingFormat string   `json:"encoding_format"`
}

type nimEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewNVIDIAEmbedder talks to the NVIDIA NIM embeddings endpoint
// (OpenAI-compatible REST). All input texts go out in a single request and
// the response vectors mirror the input order.
func NewNVIDIAEmbedder(opts Options) Embedder {
	endpoint := strings.TrimRight(opts.NIMEndpoint, "/")
	if endpoint == "" {
		endpoint = "https://integrate.api.nvidia.com/v1"
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &nvidiaEmbedder{
		endpoint:  endpoint,
		apiKey:    opts.NIMAPIKey,
		model:     opts.Model,
		dimension: opts.Dimension,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *nvidiaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(nimEmbeddingRequest{
		Model:          e.model,
		Input:          texts,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal nim embedding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create nim embedding request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: call nim embeddings API: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, readErr := io.ReadAll(resp.Body)
		if readErr == nil && len(data) > 0 {
			return nil, fmt.Errorf("%w: nim embeddings API error %s: %s", ErrServiceUnavailable, resp.Status, string(data))
		}
		return nil, fmt.Errorf("%w: nim embeddings API returned status %s", ErrServiceUnavailable, resp.Status)
	}

	var parsed nimEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode nim embedding response: %w", err)
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("nim embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(parsed.Data))
	}

	results := make([][]float32, len(parsed.Data))
	for i, datum := range parsed.Data {
		if e.dimension > 0 && len(datum.Embedding) != e.dimension {
			return nil, fmt.Errorf("nim embedding dimension mismatch: expected %d, got %d", e.dimension, len(datum.Embedding))
		}
		results[i] = datum.Embedding
	}

	return results, nil
}
