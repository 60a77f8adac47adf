package testutils

import (
	"context"

	"github.com/papercomputeco/minutes/pkg/memory"
)

// MockMemoryDriver is a test memory driver that records calls and returns
// configurable results.
type MockMemoryDriver struct {
	// StoredDocs accumulates all documents passed to Store.
	StoredDocs []memory.Doc

	// Answer is returned by Ask.
	Answer string

	// Memories is returned by Ask alongside the answer.
	Memories []memory.Memory

	// AskErr, when set, is returned by Ask instead of an answer.
	AskErr error

	// FailStore causes Store to return ErrNotConfigured.
	FailStore bool
}

// NewMockMemoryDriver creates a new mock memory driver.
func NewMockMemoryDriver() *MockMemoryDriver {
	return &MockMemoryDriver{
		StoredDocs: make([]memory.Doc, 0),
	}
}

func (m *MockMemoryDriver) Store(_ context.Context, docs []memory.Doc) error {
	if m.FailStore {
		return memory.ErrNotConfigured
	}
	m.StoredDocs = append(m.StoredDocs, docs...)
	return nil
}

func (m *MockMemoryDriver) Ask(_ context.Context, _ string) (string, []memory.Memory, error) {
	if m.AskErr != nil {
		return "", nil, m.AskErr
	}
	return m.Answer, m.Memories, nil
}

func (m *MockMemoryDriver) Close() error {
	return nil
}
