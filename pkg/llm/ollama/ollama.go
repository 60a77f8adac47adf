// Package ollama provides a Generator backed by a local Ollama server.
package ollama

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
	DefaultModel = "llama3.2"

	// DefaultBaseURL is the default Ollama server URL.
	DefaultBaseURL = "http://localhost:11434"
)

// Generator calls the Ollama /api/chat endpoint.
type Generator struct {
	baseURL string
	model   string
	client  *http.Client
}

// Config holds configuration for the Ollama generator.
type Config struct {
	// BaseURL is the Ollama server URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Model is the chat model name. Defaults to DefaultModel.
	Model string

	// Timeout for requests. Defaults to 120 seconds; generation is slow.
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
		c.Timeout = 120 * time.Second
	}

	return &Generator{
		baseURL: c.BaseURL,
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

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Generate sends a non-streaming chat request and returns the completion.
func (g *Generator) Generate(ctx context.Context, req llm.Request) (string, error) {
	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	options := map[string]any{}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}

	body, err := json.Marshal(chatRequest{
		Model:    g.model,
		Messages: messages,
		Stream:   false,
		Options:  options,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: ollama returned status %d: %s",
			llm.ErrUnavailable, resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}

	return chatResp.Message.Content, nil
}

func (g *Generator) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
