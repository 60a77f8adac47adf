// Package vector provides interfaces and implementations for vector storage and embedding.
package vector

import "context"

// Metadata carries the declared provenance of an indexed document. Source is
// the discriminator enrichment keys off ("meeting" or "decision"); EntityID
// is the owning entity's id in the graph.
type Metadata struct {
	// Source declares what kind of entity produced this document.
	Source string `json:"source"`

	// EntityID is the owning entity id (meeting id or decision id).
	EntityID string `json:"entity_id"`

	// MeetingID is the meeting the entity belongs to, when applicable.
	MeetingID string `json:"meeting_id,omitempty"`

	// Topic is the free-text topic label, when applicable.
	Topic string `json:"topic,omitempty"`
}

// Document represents a stored item with its embedding and metadata.
type Document struct {
	// ID is a unique identifier for the document.
	ID string

	// Content is the indexed text.
	Content string

	// Metadata is the document's declared provenance.
	Metadata Metadata

	// Embedding is the vector representation of the document content.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of vector embeddings.
type Driver interface {
	// Add stores documents with their embeddings.
	// If a document with the same ID already exists, implementers should update
	// the document.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Get retrieves documents by their IDs.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
