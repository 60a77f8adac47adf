package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/papercomputeco/minutes/pkg/llm"
)

// MockGenerator is a test generator that records prompts and returns
// configurable responses.
type MockGenerator struct {
	mu sync.Mutex

	// Response is returned for every call when Responder is nil.
	Response string

	// Responder, when set, computes the response from the request.
	Responder func(req llm.Request) (string, error)

	// FailTimes causes the first N calls to fail before succeeding.
	FailTimes int

	// FailAll causes every call to fail.
	FailAll bool

	// Requests accumulates every request seen.
	Requests []llm.Request

	calls int
}

func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{
		Response: response,
	}
}

func (m *MockGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	m.calls++

	if m.FailAll {
		return "", fmt.Errorf("%w: mock generator failure", llm.ErrUnavailable)
	}

	if m.calls <= m.FailTimes {
		return "", fmt.Errorf("%w: mock generator failure %d", llm.ErrUnavailable, m.calls)
	}

	if m.Responder != nil {
		return m.Responder(req)
	}

	return m.Response, nil
}

// Calls reports how many times Generate was invoked.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockGenerator) Close() error {
	return nil
}
