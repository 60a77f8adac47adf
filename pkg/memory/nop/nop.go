package nop

import (
	"context"

	"github.com/papercomputeco/minutes/pkg/memory"
)

// Driver is a no-op memory driver used when no managed service is
// configured. Ask always reports ErrNotConfigured so callers take the full
// local query path.
type Driver struct{}

// NewDriver creates a new no-op memory driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Store discards the documents.
func (d *Driver) Store(_ context.Context, _ []memory.Doc) error {
	return nil
}

// Ask reports that no memory service is configured.
func (d *Driver) Ask(_ context.Context, _ string) (string, []memory.Memory, error) {
	return "", nil, memory.ErrNotConfigured
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}
