package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fabfab/papercast/config"
)

const (
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.7
)

// ErrServiceUnavailable marks a transport or backend failure from a
// generation provider. Callers match it with errors.Is; the pipeline does
// not retry and lets the failure abort the current run.
var ErrServiceUnavailable = errors.New("generation service unavailable")

type Request struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the tagged result of a generation call. Simulated is true
// only for the offline provider, so callers and tests can always tell a
// substituted placeholder from a genuine model response.
type Response struct {
	Content   string
	Usage     Usage
	Model     string
	Simulated bool
	Note      string
}

type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

type Options struct {
	Provider string
	Model    string
	Timeout  time.Duration

	NIMEndpoint string
	NIMAPIKey   string

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

func NewClient(cfg config.Config) (Client, error) {
	opts := Options{
		Provider:      cfg.LLM.Provider,
		Model:         cfg.LLM.Model,
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
		return NewNVIDIAClient(opts), nil
	case config.ProviderOpenAI:
		if opts.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY not set")
		}
		return NewOpenAIClient(opts), nil
	case config.ProviderOllama:
		return NewOllamaClient(opts), nil
	case config.ProviderOffline:
		return NewOfflineClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", opts.Provider)
	}
}

func applyDefaults(req Request) Request {
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultMaxTokens
	}
	if req.Temperature <= 0 {
		req.Temperature = DefaultTemperature
	}
	return req
}
