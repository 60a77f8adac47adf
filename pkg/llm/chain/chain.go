// Package chain provides a Generator that tries a prioritized list of
// providers in declared order.
package chain

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/llm"
)

// Generator tries each underlying generator in order until one succeeds.
// Provider order is fixed at construction; there is no health tracking or
// reordering between calls.
type Generator struct {
	generators []llm.Generator
	logger     *zap.Logger
}

func NewGenerator(logger *zap.Logger, generators ...llm.Generator) (*Generator, error) {
	if len(generators) == 0 {
		return nil, fmt.Errorf("at least one generator is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		generators: generators,
		logger:     logger,
	}, nil
}

// Generate tries each provider in order. Every failure advances to the next;
// when all fail the last error is returned wrapped in ErrUnavailable.
func (g *Generator) Generate(ctx context.Context, req llm.Request) (string, error) {
	var lastErr error
	for i, gen := range g.generators {
		answer, err := gen.Generate(ctx, req)
		if err == nil {
			return answer, nil
		}

		lastErr = err
		g.logger.Warn("generator failed, trying next provider",
			zap.Int("provider_index", i),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("%w: all providers failed: %v", llm.ErrUnavailable, lastErr)
}

// Close closes every underlying generator, returning the first error.
func (g *Generator) Close() error {
	var firstErr error
	for _, gen := range g.generators {
		if err := gen.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
