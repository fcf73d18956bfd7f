package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/fabfab/papercast/config"
)

func TestNewClientProviderSelection(t *testing.T) {
	cfg := config.Config{}

	cfg.LLM.Provider = config.ProviderOffline
	if _, err := NewClient(cfg); err != nil {
		t.Fatalf("offline provider: %v", err)
	}

	cfg.LLM.Provider = config.ProviderOllama
	if _, err := NewClient(cfg); err != nil {
		t.Fatalf("ollama provider: %v", err)
	}

	cfg.LLM.Provider = config.ProviderNVIDIA
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("nvidia provider without NVIDIA_API_KEY should fail")
	}
	cfg.NIMAPIKey = "test-key"
	if _, err := NewClient(cfg); err != nil {
		t.Fatalf("nvidia provider with key: %v", err)
	}

	cfg.LLM.Provider = config.ProviderOpenAI
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("openai provider without OPENAI_API_KEY should fail")
	}
	cfg.OpenAIAPIKey = "test-key"
	if _, err := NewClient(cfg); err != nil {
		t.Fatalf("openai provider with key: %v", err)
	}

	cfg.LLM.Provider = "mainframe"
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("unknown provider should fail")
	}
}

func TestOfflineClientTagsResponses(t *testing.T) {
	client := NewOfflineClient(Options{})

	resp, err := client.Generate(context.Background(), Request{Prompt: "Summarize this research paper analysis."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Simulated {
		t.Error("offline response must be tagged simulated")
	}
	if resp.Note == "" {
		t.Error("offline response must carry an explanatory note")
	}
	if resp.Model != OfflineModelName {
		t.Errorf("model = %q, want %q", resp.Model, OfflineModelName)
	}
	if resp.Usage.TotalTokens != resp.Usage.PromptTokens+resp.Usage.CompletionTokens {
		t.Errorf("usage does not add up: %+v", resp.Usage)
	}
}

func TestOfflineClientDeterministic(t *testing.T) {
	client := NewOfflineClient(Options{})
	req := Request{Prompt: "Write a podcast script about this paper."}

	first, err := client.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := client.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Content != second.Content {
		t.Error("offline responses should be deterministic for the same prompt")
	}
	if !strings.Contains(first.Content, "Host 1") {
		t.Errorf("script prompt should yield dialogue content, got %q", first.Content)
	}
}

func TestOfflineClientHonorsCancelledContext(t *testing.T) {
	client := NewOfflineClient(Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Generate(ctx, Request{Prompt: "anything"}); err == nil {
		t.Fatal("expected error from a cancelled context")
	}
}

func TestApplyDefaults(t *testing.T) {
	req := applyDefaults(Request{Prompt: "p"})
	if req.MaxTokens != DefaultMaxTokens {
		t.Errorf("max tokens = %d, want %d", req.MaxTokens, DefaultMaxTokens)
	}
	if req.Temperature != DefaultTemperature {
		t.Errorf("temperature = %f, want %f", req.Temperature, DefaultTemperature)
	}

	req = applyDefaults(Request{Prompt: "p", MaxTokens: 3000, Temperature: 0.2})
	if req.MaxTokens != 3000 || req.Temperature != 0.2 {
		t.Errorf("explicit values should be kept, got %+v", req)
	}
}
