// Package backboard provides a memory driver backed by the Backboard managed
// memory service.
package backboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/memory"
)

// DefaultBaseURL is the default Backboard API URL.
const DefaultBaseURL = "https://api.backboard.io/v1"

// Driver talks to the Backboard HTTP API.
type Driver struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// Config holds configuration for the Backboard driver.
type Config struct {
	// BaseURL is the API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// APIKey authenticates requests. Required.
	APIKey string

	// Timeout for requests. Defaults to 30 seconds.
	Timeout time.Duration
}

func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("%w: api key is required", memory.ErrNotConfigured)
	}

	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}

	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Driver{
		baseURL: c.BaseURL,
		apiKey:  c.APIKey,
		client: &http.Client{
			Timeout: c.Timeout,
		},
		logger: logger,
	}, nil
}

type storeRequest struct {
	Documents []memory.Doc `json:"documents"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer   string          `json:"answer"`
	Memories []memory.Memory `json:"memories"`
}

// Store sends documents to the service for ingestion.
func (d *Driver) Store(ctx context.Context, docs []memory.Doc) error {
	if len(docs) == 0 {
		return nil
	}

	body, err := json.Marshal(storeRequest{Documents: docs})
	if err != nil {
		return fmt.Errorf("marshaling store request: %w", err)
	}

	resp, err := d.do(ctx, http.MethodPost, "/documents", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("storing documents: %w", err)
	}

	d.logger.Debug("stored documents in memory service",
		zap.Int("count", len(docs)),
	)

	return nil
}

// Ask answers a question from stored memory.
func (d *Driver) Ask(ctx context.Context, question string) (string, []memory.Memory, error) {
	body, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return "", nil, fmt.Errorf("marshaling ask request: %w", err)
	}

	resp, err := d.do(ctx, http.MethodPost, "/ask", body)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", nil, fmt.Errorf("asking memory service: %w", err)
	}

	var askResp askResponse
	if err := json.NewDecoder(resp.Body).Decode(&askResp); err != nil {
		return "", nil, fmt.Errorf("decoding ask response: %w", err)
	}

	return askResp.Answer, askResp.Memories, nil
}

func (d *Driver) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("memory service request: %w", err)
	}

	return resp, nil
}

// checkStatus maps HTTP status codes to driver errors. Payment-required and
// rate-limit responses become ErrQuotaExceeded so callers fall back to the
// local pipeline.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusTooManyRequests:
		return memory.ErrQuotaExceeded
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("memory service returned status %d: %s",
			resp.StatusCode, string(respBody))
	}
}

// Close releases the HTTP client.
func (d *Driver) Close() error {
	d.client.CloseIdleConnections()
	return nil
}
