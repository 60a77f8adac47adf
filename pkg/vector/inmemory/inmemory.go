// Package inmemory provides an in-process vector driver backed by a brute
// force cosine similarity scan.
//
// It is the secondary index the retrieval adapter falls back to when the
// configured remote vector service is unreachable, and the default driver
// for tests and zero-dependency local runs. Results are sorted descending by
// score; equal scores preserve insertion order.
package inmemory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/papercomputeco/minutes/pkg/vector"
)

// Driver implements vector.Driver with in-process storage.
type Driver struct {
	mu sync.RWMutex

	// docs holds documents in insertion order, which is the tie break for
	// equal similarity scores.
	docs  []vector.Document
	index map[string]int // doc id -> position in docs
}

// NewDriver creates an empty in-memory vector driver.
func NewDriver() *Driver {
	return &Driver{
		index: make(map[string]int),
	}
}

// Add stores documents, replacing any existing document with the same ID
// in place so insertion order is preserved.
func (d *Driver) Add(_ context.Context, docs []vector.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		if pos, ok := d.index[doc.ID]; ok {
			d.docs[pos] = doc
			continue
		}
		d.index[doc.ID] = len(d.docs)
		d.docs = append(d.docs, doc)
	}
	return nil
}

// Query scans all documents and returns the topK most similar by cosine
// similarity.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	results := make([]vector.QueryResult, 0, len(d.docs))
	for _, doc := range d.docs {
		if len(doc.Embedding) == 0 {
			continue
		}
		results = append(results, vector.QueryResult{
			Document: doc,
			Score:    cosine(embedding, doc.Embedding),
		})
	}

	// SliceStable keeps insertion order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Get retrieves documents by their IDs. Unknown ids are skipped.
func (d *Driver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	docs := make([]vector.Document, 0, len(ids))
	for _, id := range ids {
		if pos, ok := d.index[id]; ok {
			docs = append(docs, d.docs[pos])
		}
	}
	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(_ context.Context, ids []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	remove := make(map[string]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}

	kept := d.docs[:0]
	for _, doc := range d.docs {
		if !remove[doc.ID] {
			kept = append(kept, doc)
		}
	}
	d.docs = kept

	d.index = make(map[string]int, len(d.docs))
	for i, doc := range d.docs {
		d.index[doc.ID] = i
	}
	return nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// cosine computes the cosine similarity of two vectors. Mismatched lengths
// compare over the shorter prefix; zero vectors score zero.
func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
