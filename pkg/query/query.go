// Package query answers natural language questions about meeting memory.
//
// A query runs retrieve → enrich → synthesize: semantic search finds relevant
// documents, the graph attaches meeting and decision context, and the
// completion service writes a sourced answer. Every stage degrades rather
// than fails — callers always receive a well-formed result whose confidence
// reflects how much context backed the answer.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/graph"
	"github.com/papercomputeco/minutes/pkg/llm"
	"github.com/papercomputeco/minutes/pkg/memory"
	"github.com/papercomputeco/minutes/pkg/retrieval"
)

const (
	// DefaultTopK is the retrieval width when the caller does not choose one.
	DefaultTopK = 5

	// graphSampleSize bounds the decisions sampled from the graph when
	// retrieval comes back empty.
	graphSampleSize = 5

	// maxRetries is how many times synthesis is retried after the first
	// failure.
	maxRetries = 2

	synthesisMaxTokens   = 500
	synthesisTemperature = 0.7
)

const systemPrompt = `You are Minutes, an AI meeting assistant that helps teams remember decisions and track action items.

Your role:
- Answer questions about past meetings, decisions, and action items
- Be concise and direct (2-3 sentences for spoken responses, more detail for written)
- Always cite the specific meeting date and who made the decision
- Include direct quotes when available
- If you don't have enough information, say so clearly

Important: Cite your sources. Reference specific meetings and people.`

// DecisionRef is a compact reference to a decision contained in a meeting
// source.
type DecisionRef struct {
	Content string `json:"content"`
	MadeBy  string `json:"made_by,omitempty"`
}

// Source is one piece of context the answer was synthesized from. SourceType
// discriminates the fields that are populated: "meeting" sources carry
// meeting fields and contained decisions, "decision" sources carry decision
// fields plus their meeting header, "memory" sources carry content only.
type Source struct {
	ID         string  `json:"id"`
	Content    string  `json:"content,omitempty"`
	Score      float32 `json:"score,omitempty"`
	SourceType string  `json:"source_type"`
	Topic      string  `json:"topic,omitempty"`

	MeetingTitle string   `json:"meeting_title,omitempty"`
	MeetingDate  string   `json:"meeting_date,omitempty"`
	Attendees    []string `json:"attendees,omitempty"`

	Decisions []DecisionRef `json:"decisions,omitempty"`

	DecisionContent string `json:"decision_content,omitempty"`
	Rationale       string `json:"rationale,omitempty"`
	MadeBy          string `json:"made_by,omitempty"`
	Quote           string `json:"quote,omitempty"`
}

// Result is the outcome of a query. Confidence is a coarse signal of how
// much context backed the answer, not a model probability.
type Result struct {
	Answer     string        `json:"answer"`
	Sources    []Source      `json:"sources"`
	Elapsed    time.Duration `json:"elapsed"`
	Confidence float64       `json:"confidence"`
}

// Searcher is the retrieval surface the engine depends on.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) []retrieval.Result
}

// Engine answers questions against the graph, the retrieval index, and the
// completion service.
type Engine struct {
	graph      *graph.Store
	searcher   Searcher
	generator  llm.Generator
	memory     memory.Driver
	logger     *zap.Logger
	retryPause time.Duration
}

// Opts configures an Engine. Memory is optional; when nil, QueryFast always
// takes the full query path.
type Opts struct {
	Graph     *graph.Store
	Searcher  Searcher
	Generator llm.Generator
	Memory    memory.Driver
	Logger    *zap.Logger

	// RetryPause overrides the pause between synthesis retries.
	// Defaults to one second.
	RetryPause time.Duration
}

func NewEngine(o Opts) (*Engine, error) {
	if o.Graph == nil {
		return nil, fmt.Errorf("graph store is required")
	}

	if o.Searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}

	if o.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}

	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pause := o.RetryPause
	if pause == 0 {
		pause = time.Second
	}

	return &Engine{
		graph:      o.Graph,
		searcher:   o.Searcher,
		generator:  o.Generator,
		memory:     o.Memory,
		logger:     logger,
		retryPause: pause,
	}, nil
}

// Query answers a natural language question about meeting history.
func (e *Engine) Query(ctx context.Context, question string, topK int) Result {
	start := time.Now()

	if topK <= 0 {
		topK = DefaultTopK
	}

	hits := e.searcher.Search(ctx, question, topK)
	e.logger.Debug("retrieval complete",
		zap.String("question", question),
		zap.Int("hits", len(hits)),
	)

	sources := e.enrich(hits)

	// When the index has nothing, sample recent decisions from the graph
	// so the answer can still be grounded somewhere.
	if len(sources) == 0 {
		sources = e.graphSample()
		e.logger.Debug("retrieval empty, sampled graph decisions",
			zap.Int("sampled", len(sources)),
		)
	}

	answer, confidence := e.synthesize(ctx, question, sources)

	return Result{
		Answer:     answer,
		Sources:    sources,
		Elapsed:    time.Since(start),
		Confidence: confidence,
	}
}

// QueryFast answers via the managed memory service when one is configured.
// Quota exhaustion or any other failure falls back to the full local query.
func (e *Engine) QueryFast(ctx context.Context, question string) Result {
	if e.memory == nil {
		return e.Query(ctx, question, DefaultTopK)
	}

	start := time.Now()

	answer, memories, err := e.memory.Ask(ctx, question)
	if err != nil || answer == "" {
		if err != nil && !errors.Is(err, memory.ErrNotConfigured) {
			e.logger.Warn("memory service query failed, falling back to full query",
				zap.Error(err),
			)
		}
		return e.Query(ctx, question, DefaultTopK)
	}

	sources := make([]Source, 0, len(memories))
	for i, m := range memories {
		sources = append(sources, Source{
			ID:         fmt.Sprintf("memory:%d", i),
			Content:    m.Content,
			Score:      float32(m.Relevance),
			SourceType: "memory",
		})
	}

	confidence := 0.5
	if len(memories) > 0 {
		confidence = contextConfidence(len(memories))
	}

	return Result{
		Answer:     answer,
		Sources:    sources,
		Elapsed:    time.Since(start),
		Confidence: confidence,
	}
}

// enrich attaches graph context to each search hit. Hits whose entities are
// gone from the graph keep their retrieval fields and lose only the
// enrichment; unknown source types pass through unchanged.
func (e *Engine) enrich(hits []retrieval.Result) []Source {
	sources := make([]Source, 0, len(hits))

	for _, hit := range hits {
		src := Source{
			ID:         hit.ID,
			Content:    hit.Content,
			Score:      hit.Score,
			SourceType: hit.Source,
			Topic:      hit.Metadata.Topic,
		}

		switch hit.Source {
		case "meeting":
			if m, ok := e.graph.Meeting(hit.Metadata.EntityID); ok {
				src.MeetingTitle = m.Title
				src.MeetingDate = m.Date.Format("2006-01-02")
				for _, pid := range m.Attendees {
					src.Attendees = append(src.Attendees, e.graph.PersonName(pid))
				}
				for _, d := range e.graph.DecisionsByMeeting(m.ID) {
					src.Decisions = append(src.Decisions, DecisionRef{
						Content: d.Content,
						MadeBy:  e.graph.PersonName(d.MadeBy),
					})
				}
			}
		case "decision":
			if d, ok := e.graph.Decision(hit.Metadata.EntityID); ok {
				src.DecisionContent = d.Content
				src.Rationale = d.Rationale
				src.MadeBy = e.graph.PersonName(d.MadeBy)
				src.Quote = d.Quote
				if m, ok := e.graph.Meeting(d.MeetingID); ok {
					src.MeetingTitle = m.Title
					src.MeetingDate = m.Date.Format("2006-01-02")
				}
			}
		}

		sources = append(sources, src)
	}

	return sources
}

// graphSample returns a bounded sample of decisions as synthetic sources.
func (e *Engine) graphSample() []Source {
	// AllDecisions sorts ascending by timestamp, so the tail is the most
	// recent slice of the graph.
	decisions := e.graph.AllDecisions()
	if len(decisions) > graphSampleSize {
		decisions = decisions[len(decisions)-graphSampleSize:]
	}

	sources := make([]Source, 0, len(decisions))
	for _, d := range decisions {
		src := Source{
			ID:              d.ID,
			Content:         d.Content,
			SourceType:      "decision",
			Topic:           d.Topic,
			DecisionContent: d.Content,
			Rationale:       d.Rationale,
			MadeBy:          e.graph.PersonName(d.MadeBy),
			Quote:           d.Quote,
		}
		if m, ok := e.graph.Meeting(d.MeetingID); ok {
			src.MeetingTitle = m.Title
			src.MeetingDate = m.Date.Format("2006-01-02")
		}
		sources = append(sources, src)
	}

	return sources
}

// synthesize asks the completion service for a sourced answer, retrying on
// failure and falling back to deterministic formatting when every attempt
// fails.
func (e *Engine) synthesize(ctx context.Context, question string, sources []Source) (string, float64) {
	prompt := fmt.Sprintf(`Based on the following meeting context, answer this question:

Question: %s

Context:
%s

Provide a clear, sourced answer. If the information isn't in the context, say so.`,
		question, formatContext(sources))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(e.retryPause):
			case <-ctx.Done():
				lastErr = ctx.Err()
				return e.fallbackAnswer(sources, lastErr)
			}
		}

		answer, err := e.generator.Generate(ctx, llm.Request{
			System:      systemPrompt,
			Prompt:      prompt,
			MaxTokens:   synthesisMaxTokens,
			Temperature: synthesisTemperature,
		})
		if err == nil && answer != "" {
			return answer, contextConfidence(len(sources))
		}

		if err != nil {
			lastErr = err
			e.logger.Warn("answer synthesis failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
		}
	}

	return e.fallbackAnswer(sources, lastErr)
}

// fallbackAnswer renders sources as deterministic markdown when synthesis is
// unavailable. With no sources at all, it reports that the question could
// not be answered.
func (e *Engine) fallbackAnswer(sources []Source, lastErr error) (string, float64) {
	if len(sources) == 0 {
		msg := "unknown error"
		if lastErr != nil {
			msg = lastErr.Error()
		}
		return fmt.Sprintf("Could not generate answer. Error: %s", msg), 0.0
	}

	parts := []string{"Based on the meeting records I found:"}

	limit := len(sources)
	if limit > graphSampleSize {
		limit = graphSampleSize
	}

	for _, src := range sources[:limit] {
		switch {
		case src.DecisionContent != "":
			var sb strings.Builder
			fmt.Fprintf(&sb, "\n**Decision:** %s", src.DecisionContent)
			if src.Rationale != "" {
				fmt.Fprintf(&sb, "\n  - Rationale: %s", src.Rationale)
			}
			if src.MadeBy != "" {
				fmt.Fprintf(&sb, "\n  - Made by: %s", src.MadeBy)
			}
			if src.MeetingTitle != "" {
				date := src.MeetingDate
				if date == "" {
					date = "unknown date"
				}
				fmt.Fprintf(&sb, "\n  - From: %s (%s)", src.MeetingTitle, date)
			}
			parts = append(parts, sb.String())
		case src.Content != "":
			content := truncate(src.Content, 300)
			if src.MeetingTitle != "" {
				parts = append(parts, fmt.Sprintf("\n**From %s:** %s...", src.MeetingTitle, content))
			} else {
				parts = append(parts, "\n"+content+"...")
			}
		}
	}

	if len(parts) == 1 {
		msg := "unknown error"
		if lastErr != nil {
			msg = lastErr.Error()
		}
		return fmt.Sprintf("Could not generate answer. Error: %s", msg), 0.0
	}

	if lastErr != nil {
		parts = append(parts, fmt.Sprintf(
			"\n\n*(Note: answer synthesis unavailable - showing raw results. Error: %s)*",
			truncate(lastErr.Error(), 100)))
	}

	return strings.Join(parts, "\n"), 0.5
}

// formatContext renders sources as numbered blocks for the synthesis prompt.
func formatContext(sources []Source) string {
	if len(sources) == 0 {
		return "No context available."
	}

	parts := make([]string, 0, len(sources))
	for i, src := range sources {
		lines := []string{fmt.Sprintf("--- Source %d ---", i+1)}

		if src.MeetingTitle != "" {
			line := "Meeting: " + src.MeetingTitle
			if src.MeetingDate != "" {
				line += " (" + src.MeetingDate + ")"
			}
			lines = append(lines, line)
		}

		if src.DecisionContent != "" {
			lines = append(lines, "Decision: "+src.DecisionContent)
			if src.Rationale != "" {
				lines = append(lines, "Rationale: "+src.Rationale)
			}
			if src.MadeBy != "" {
				lines = append(lines, "Made by: "+src.MadeBy)
			}
			if src.Quote != "" {
				lines = append(lines, fmt.Sprintf("Quote: %q", src.Quote))
			}
		} else if src.Content != "" {
			lines = append(lines, "Content: "+truncate(src.Content, 500))
		}

		if len(lines) == 1 && src.Topic != "" {
			lines = append(lines, "Topic: "+src.Topic)
		}

		parts = append(parts, strings.Join(lines, "\n"))
	}

	return strings.Join(parts, "\n\n")
}

// contextConfidence maps context volume to a coarse confidence score: three
// or more sources saturate at 1.0.
func contextConfidence(n int) float64 {
	c := float64(n) / 3
	if c > 1 {
		c = 1
	}
	return c
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// ==================== Convenience methods ====================

// Why answers "Why did we decide X?" for a topic.
func (e *Engine) Why(ctx context.Context, topic string) Result {
	return e.Query(ctx, fmt.Sprintf("Why did we decide %s?", topic), DefaultTopK)
}

// Who answers "Who decided X?" for a topic.
func (e *Engine) Who(ctx context.Context, topic string) Result {
	return e.Query(ctx, fmt.Sprintf("Who decided %s?", topic), DefaultTopK)
}

// WhatHappened answers "What happened with X?" for a topic.
func (e *Engine) WhatHappened(ctx context.Context, topic string) Result {
	return e.Query(ctx, fmt.Sprintf("What happened with %s?", topic), DefaultTopK)
}

// StatusOf answers "What's the current status of X?" for a topic.
func (e *Engine) StatusOf(ctx context.Context, topic string) Result {
	return e.Query(ctx, fmt.Sprintf("What's the current status of %s?", topic), DefaultTopK)
}
