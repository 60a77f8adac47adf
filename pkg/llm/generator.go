// Package llm defines the text generation boundary used for answer synthesis
// and impact judgments.
package llm

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the completion service could not be reached or
// refused the request. Callers recover by retrying, trying another provider,
// or falling back to deterministic formatting.
var ErrUnavailable = errors.New("completion service unavailable")

// Request is a single completion request.
type Request struct {
	// System is the system instruction, optional.
	System string

	// Prompt is the user prompt.
	Prompt string

	// MaxTokens bounds the completion length. Zero means provider default.
	MaxTokens int

	// Temperature controls sampling. Zero means provider default.
	Temperature float64
}

// Generator produces a completion for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
}
