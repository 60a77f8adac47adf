package nop

import (
	"context"

	"github.com/papercomputeco/minutes/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishRipple validates input and otherwise does nothing.
func (p *Publisher) PublishRipple(_ context.Context, event *eventstream.RippleDetectedEvent) error {
	if event == nil {
		return eventstream.ErrNilRippleEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
