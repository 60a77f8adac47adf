// Package retrieval provides semantic search over meeting memory with a
// primary vector driver and a transparent local fallback.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/embeddings"
	"github.com/papercomputeco/minutes/pkg/model"
	"github.com/papercomputeco/minutes/pkg/vector"
)

// Result is a single search hit.
type Result struct {
	ID       string
	Content  string
	Score    float32
	Source   string
	Metadata vector.Metadata
}

// Adapter indexes meeting-memory documents and searches them. Searches go to
// the primary driver first; a primary failure or an empty result set falls
// back to the local driver. When both fail, Search returns an empty list
// rather than an error so callers can degrade to graph-only answers.
type Adapter struct {
	primary  vector.Driver
	fallback vector.Driver
	embedder embeddings.Embedder
	logger   *zap.Logger
}

// Opts configures an Adapter. Primary may be nil, in which case only the
// fallback driver is used.
type Opts struct {
	Primary  vector.Driver
	Fallback vector.Driver
	Embedder embeddings.Embedder
	Logger   *zap.Logger
}

func NewAdapter(o Opts) (*Adapter, error) {
	if o.Fallback == nil {
		return nil, fmt.Errorf("fallback vector driver is required")
	}

	if o.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Adapter{
		primary:  o.Primary,
		fallback: o.Fallback,
		embedder: o.Embedder,
		logger:   logger,
	}, nil
}

// Index embeds content and stores it in every configured driver. An error
// means the document landed in neither index.
func (a *Adapter) Index(ctx context.Context, docID, content string, meta vector.Metadata) error {
	emb, err := a.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embedding document %s: %w", docID, err)
	}

	doc := vector.Document{
		ID:        docID,
		Content:   content,
		Metadata:  meta,
		Embedding: emb,
	}

	var primaryErr error
	if a.primary != nil {
		primaryErr = a.primary.Add(ctx, []vector.Document{doc})
		if primaryErr != nil {
			a.logger.Warn("primary index add failed",
				zap.String("doc_id", docID),
				zap.Error(primaryErr),
			)
		}
	}

	if err := a.fallback.Add(ctx, []vector.Document{doc}); err != nil {
		if primaryErr != nil {
			return fmt.Errorf("indexing document %s: %w", docID, err)
		}
		a.logger.Warn("fallback index add failed",
			zap.String("doc_id", docID),
			zap.Error(err),
		)
	}

	return nil
}

// IndexMeeting indexes a meeting summary document.
func (a *Adapter) IndexMeeting(ctx context.Context, m *model.Meeting) error {
	var sb strings.Builder
	sb.WriteString(m.Title)
	if m.Summary != "" {
		sb.WriteString(". ")
		sb.WriteString(m.Summary)
	}
	if m.Project != "" {
		sb.WriteString(" Project: ")
		sb.WriteString(m.Project)
	}

	return a.Index(ctx, "meeting:"+m.ID, sb.String(), vector.Metadata{
		Source:    "meeting",
		EntityID:  m.ID,
		MeetingID: m.ID,
		Topic:     m.Project,
	})
}

// IndexDecision indexes a decision document with its rationale.
func (a *Adapter) IndexDecision(ctx context.Context, d *model.Decision) error {
	var sb strings.Builder
	sb.WriteString(d.Content)
	if d.Rationale != "" {
		sb.WriteString(" Rationale: ")
		sb.WriteString(d.Rationale)
	}

	return a.Index(ctx, "decision:"+d.ID, sb.String(), vector.Metadata{
		Source:    "decision",
		EntityID:  d.ID,
		MeetingID: d.MeetingID,
		Topic:     d.Topic,
	})
}

// Search returns up to topK results for the query. It never returns an
// error: embedding or driver failures degrade to an empty result list.
func (a *Adapter) Search(ctx context.Context, query string, topK int) []Result {
	if topK <= 0 {
		topK = 5
	}

	emb, err := a.embedder.Embed(ctx, query)
	if err != nil {
		a.logger.Warn("query embedding failed",
			zap.Error(err),
		)
		return nil
	}

	if a.primary != nil {
		results, err := a.primary.Query(ctx, emb, topK)
		if err == nil && len(results) > 0 {
			return toResults(results)
		}
		if err != nil {
			a.logger.Warn("primary search failed, falling back",
				zap.Error(err),
			)
		}
	}

	results, err := a.fallback.Query(ctx, emb, topK)
	if err != nil {
		a.logger.Warn("fallback search failed",
			zap.Error(err),
		)
		return nil
	}

	return toResults(results)
}

func toResults(qrs []vector.QueryResult) []Result {
	results := make([]Result, 0, len(qrs))
	for _, qr := range qrs {
		results = append(results, Result{
			ID:       qr.Document.ID,
			Content:  qr.Document.Content,
			Score:    qr.Score,
			Source:   qr.Document.Metadata.Source,
			Metadata: qr.Document.Metadata,
		})
	}
	return results
}

// Close closes the configured drivers and the embedder.
func (a *Adapter) Close() error {
	var firstErr error

	if a.primary != nil {
		if err := a.primary.Close(); err != nil {
			firstErr = err
		}
	}

	if err := a.fallback.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	a.embedder.Close()

	return firstErr
}
