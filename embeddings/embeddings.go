package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fabfab/papercast/config"
)

// ErrServiceUnavailable marks a transport or backend failure from an
// embedding provider. The fact checker does not retry; the error aborts the
// whole validation and no partial report is produced.
var ErrServiceUnavailable = errors.New("embedding service unavailable")

// Embedder maps a list of texts to one fixed-dimension vector per text,
// positionally aligned with the input.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	Provider  string
	Model     string
	Dimension int
	Timeout   time.Duration

	NIMEndpoint string
	NIMAPIKey   string

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

func NewEmbedder(cfg config.Config) (Embedder, error) {
	opts := Options{
		Provider:      cfg.Embeddings.Provider,
		Model:         cfg.Embeddings.Model,
		Dimension:     cfg.Embeddings.Dimension,
		Timeout:       cfg.RequestTimeout,
		NIMEndpoint:   cfg.NIMEndpoint,
		NIMAPIKey:     cfg.NIMAPIKey,
		OllamaHost:    cfg.OllamaHost,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
	}

	switch opts.Provider {
	case config.ProviderNVIDIA:
		if opts.NIMAPIKey == "" {
			return nil, fmt.Errorf("nvidia provider selected but NVIDIA_API_KEY not set")
		}
		return NewNVIDIAEmbedder(opts), nil
	case config.ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIEmbedder(opts), nil
	case config.ProviderOllama:
		return NewOllamaEmbedder(opts), nil
	case config.ProviderOffline:
		return NewOfflineEmbedder(opts), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", opts.Provider)
	}
}
