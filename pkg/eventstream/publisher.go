// Package eventstream defines transport-neutral events emitted by the
// analysis engines, so notification fan-out can live outside the process.
package eventstream

import "context"

// Publisher publishes ripple events to an event stream backend.
type Publisher interface {
	PublishRipple(ctx context.Context, event *RippleDetectedEvent) error
	Close() error
}
