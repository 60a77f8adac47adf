// Package memory provides a pluggable boundary to a managed memory-augmented
// answering service.
//
// Memory drivers accept meeting-memory documents and answer questions from
// their own stored representation, without the local graph or vector index.
// The fast query path delegates here; quota exhaustion or any other failure
// sends the caller back to the full local pipeline.
//
// Drivers are pluggable via configuration:
//
//	[memory]
//	provider = "backboard"   # or "nop"
package memory

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned when memory operations are attempted
// but no memory driver has been configured.
var ErrNotConfigured = errors.New("memory not configured")

// ErrQuotaExceeded is returned when the managed service refuses the request
// because the account quota is exhausted.
var ErrQuotaExceeded = errors.New("memory service quota exceeded")

// Doc is a document handed to the memory service for ingestion.
type Doc struct {
	// ID identifies the document for idempotent re-sends.
	ID string `json:"id"`

	// Content is the document text.
	Content string `json:"content"`

	// Source discriminates the entity kind, "meeting" or "decision".
	Source string `json:"source,omitempty"`
}

// Memory is a stored memory the service consulted while answering.
type Memory struct {
	// Content is the memory text.
	Content string `json:"content"`

	// Relevance is the service's relevance score for the question, if any.
	Relevance float64 `json:"relevance,omitempty"`

	// StoredAt is when the memory was created, if reported.
	StoredAt time.Time `json:"stored_at,omitempty"`
}

// Driver handles document storage and question answering against a managed
// memory service.
type Driver interface {
	// Store persists documents into the service's memory.
	Store(ctx context.Context, docs []Doc) error

	// Ask answers a question from stored memory, returning the answer and
	// the memories the service consulted.
	Ask(ctx context.Context, question string) (string, []Memory, error)

	// Close releases driver resources.
	Close() error
}
