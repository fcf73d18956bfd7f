package llm

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

type nvidiaClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

type nimChatRequest struct {
	Model       string           `json:"model"`
	Messages    []nimChatMessage `json:"messages"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float32          `json:"temperature"`
	TopP        float32          `json:"top_p"`
	Stream      bool             `json:"stream"`
}

type nimChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type nimChatResponse struct {
	Choices []struct {
		Message nimChatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Model string `json:"model"`
}

// NewNVIDIAClient talks to the NVIDIA NIM chat completions endpoint, which
// exposes an OpenAI-compatible REST surface.
func NewNVIDIAClient(opts Options) Client {
	endpoint := strings.TrimRight(opts.NIMEndpoint, "/")
	if endpoint == "" {
		endpoint = "https://integrate.api.nvidia.com/v1"
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &nvidiaClient{
		endpoint: endpoint,
		apiKey:   opts.NIMAPIKey,
		model:    opts.Model,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *nvidiaClient) Generate(ctx context.Context, req Request) (Response, error) {
	req = applyDefaults(req)

	payload := nimChatRequest{
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        0.9,
		Stream:      false,
	}
	if req.SystemPrompt != "" {
		payload.Messages = append(payload.Messages, nimChatMessage{Role: "system", Content: req.SystemPrompt})
	}
	payload.Messages = append(payload.Messages, nimChatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshal nim request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create nim request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%w: call nim chat API: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, readErr := io.ReadAll(resp.Body)
		if readErr == nil && len(data) > 0 {
			return Response{}, fmt.Errorf("%w: nim chat API error %s: %s", ErrServiceUnavailable, resp.Status, string(data))
		}
		return Response{}, fmt.Errorf("%w: nim chat API returned status %s", ErrServiceUnavailable, resp.Status)
	}

	var parsed nimChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Response{}, fmt.Errorf("decode nim response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return Response{}, fmt.Errorf("nim chat completion returned no choices")
	}

	model := parsed.Model
	if model == "" {
		model = c.model
	}

	return Response{
		Content: parsed.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
		Model: model,
	}, nil
}
