// Package openai provides a Generator for OpenAI-compatible chat completion
// endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/papercomputeco/minutes/pkg/llm"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "gpt-4o-mini"

	// DefaultBaseURL is the default API base URL. Any server speaking the
	// /v1/chat/completions protocol works (OpenAI, Cerebras, vLLM, ...).
	DefaultBaseURL = "https://api.openai.com/v1"
)

// Generator calls an OpenAI-compatible /chat/completions endpoint.
type Generator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// Config holds configuration for the generator.
type Config struct {
	// BaseURL is the API base including the version prefix.
	// Defaults to DefaultBaseURL.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Model is the chat model name. Defaults to DefaultModel.
	Model string

	// Timeout for requests. Defaults to 60 seconds.
	Timeout time.Duration
}

func NewGenerator(c Config) *Generator {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}

	if c.Model == "" {
		c.Model = DefaultModel
	}

	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}

	return &Generator{
		baseURL: c.BaseURL,
		apiKey:  c.APIKey,
		model:   c.Model,
		client: &http.Client{
			Timeout: c.Timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends a chat completion request and returns the first choice.
func (g *Generator) Generate(ctx context.Context, req llm.Request) (string, error) {
	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(completionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: completion endpoint returned status %d: %s",
			llm.ErrUnavailable, resp.StatusCode, string(respBody))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", llm.ErrUnavailable)
	}

	return completion.Choices[0].Message.Content, nil
}

func (g *Generator) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
