package query_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/minutes/pkg/graph"
	"github.com/papercomputeco/minutes/pkg/memory"
	"github.com/papercomputeco/minutes/pkg/model"
	"github.com/papercomputeco/minutes/pkg/query"
	"github.com/papercomputeco/minutes/pkg/retrieval"
	testutils "github.com/papercomputeco/minutes/pkg/utils/test"
	"github.com/papercomputeco/minutes/pkg/vector"
)

func TestQuery(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Query Suite")
}

// stubSearcher returns canned retrieval results.
type stubSearcher struct {
	results []retrieval.Result
}

func (s *stubSearcher) Search(_ context.Context, _ string, topK int) []retrieval.Result {
	if len(s.results) > topK {
		return s.results[:topK]
	}
	return s.results
}

func newStore() *graph.Store {
	store := graph.NewStore()

	Expect(store.AddPerson(&model.Person{ID: "sarah", Name: "Sarah Kim"})).To(Succeed())
	Expect(store.AddMeeting(&model.Meeting{
		ID:        "m1",
		Title:     "Payments sync",
		Date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Type:      model.MeetingAdHoc,
		Attendees: []string{"sarah"},
	})).To(Succeed())
	Expect(store.AddDecision(&model.Decision{
		ID:        "d1",
		Content:   "Use Stripe for payments",
		Rationale: "Best API ergonomics",
		Topic:     "payments",
		MadeBy:    "sarah",
		MeetingID: "m1",
		Status:    model.DecisionConfirmed,
		Timestamp: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
	})).To(Succeed())

	return store
}

func decisionHit(id string) retrieval.Result {
	return retrieval.Result{
		ID:      "decision:" + id,
		Content: "Use Stripe for payments",
		Score:   0.9,
		Source:  "decision",
		Metadata: vector.Metadata{
			Source:    "decision",
			EntityID:  id,
			MeetingID: "m1",
			Topic:     "payments",
		},
	}
}

var _ = Describe("Engine", func() {
	var (
		ctx   context.Context
		store *graph.Store
		gen   *testutils.MockGenerator
	)

	newEngine := func(searcher query.Searcher, mem memory.Driver) *query.Engine {
		e, err := query.NewEngine(query.Opts{
			Graph:      store,
			Searcher:   searcher,
			Generator:  gen,
			Memory:     mem,
			RetryPause: time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	BeforeEach(func() {
		ctx = context.Background()
		store = newStore()
		gen = testutils.NewMockGenerator("Stripe was chosen for its API.")
	})

	Describe("Query", func() {
		It("enriches decision hits with graph context and synthesizes", func() {
			e := newEngine(&stubSearcher{results: []retrieval.Result{decisionHit("d1")}}, nil)

			result := e.Query(ctx, "Why did we choose Stripe?", 5)
			Expect(result.Answer).To(Equal("Stripe was chosen for its API."))
			Expect(result.Sources).To(HaveLen(1))
			Expect(result.Sources[0].DecisionContent).To(Equal("Use Stripe for payments"))
			Expect(result.Sources[0].MadeBy).To(Equal("Sarah Kim"))
			Expect(result.Sources[0].MeetingTitle).To(Equal("Payments sync"))
			Expect(result.Sources[0].MeetingDate).To(Equal("2025-03-10"))

			Expect(gen.Requests).To(HaveLen(1))
			Expect(gen.Requests[0].Prompt).To(ContainSubstring("Use Stripe for payments"))
			Expect(gen.Requests[0].Prompt).To(ContainSubstring("Why did we choose Stripe?"))
		})

		It("scales confidence with context volume, saturating at three sources", func() {
			one := newEngine(&stubSearcher{results: []retrieval.Result{decisionHit("d1")}}, nil)
			Expect(one.Query(ctx, "q", 5).Confidence).To(BeNumerically("~", 1.0/3, 1e-9))

			two := newEngine(&stubSearcher{results: []retrieval.Result{
				decisionHit("d1"), decisionHit("ghost"),
			}}, nil)
			Expect(two.Query(ctx, "q", 5).Confidence).To(BeNumerically("~", 2.0/3, 1e-9))

			four := newEngine(&stubSearcher{results: []retrieval.Result{
				decisionHit("d1"), decisionHit("a"), decisionHit("b"), decisionHit("c"),
			}}, nil)
			Expect(four.Query(ctx, "q", 5).Confidence).To(BeNumerically("==", 1.0))
		})

		It("keeps hits whose entities are missing from the graph", func() {
			hit := decisionHit("ghost")
			e := newEngine(&stubSearcher{results: []retrieval.Result{hit}}, nil)

			result := e.Query(ctx, "q", 5)
			Expect(result.Sources).To(HaveLen(1))
			Expect(result.Sources[0].DecisionContent).To(BeEmpty())
			Expect(result.Sources[0].Content).To(Equal("Use Stripe for payments"))
		})

		It("samples graph decisions when retrieval is empty", func() {
			e := newEngine(&stubSearcher{}, nil)

			result := e.Query(ctx, "q", 5)
			Expect(result.Sources).To(HaveLen(1))
			Expect(result.Sources[0].DecisionContent).To(Equal("Use Stripe for payments"))
		})

		It("retries synthesis before falling back", func() {
			gen.FailTimes = 2
			e := newEngine(&stubSearcher{results: []retrieval.Result{decisionHit("d1")}}, nil)

			result := e.Query(ctx, "q", 5)
			Expect(result.Answer).To(Equal("Stripe was chosen for its API."))
			Expect(gen.Calls()).To(Equal(3))
		})

		It("falls back to deterministic formatting when synthesis keeps failing", func() {
			gen.FailAll = true
			e := newEngine(&stubSearcher{results: []retrieval.Result{decisionHit("d1")}}, nil)

			result := e.Query(ctx, "q", 5)
			Expect(result.Answer).To(ContainSubstring("Based on the meeting records I found:"))
			Expect(result.Answer).To(ContainSubstring("**Decision:** Use Stripe for payments"))
			Expect(result.Answer).To(ContainSubstring("synthesis unavailable"))
			Expect(result.Confidence).To(Equal(0.5))
		})

		It("reports failure with zero confidence when there is no context at all", func() {
			gen.FailAll = true
			empty := graph.NewStore()
			e, err := query.NewEngine(query.Opts{
				Graph:      empty,
				Searcher:   &stubSearcher{},
				Generator:  gen,
				RetryPause: time.Millisecond,
			})
			Expect(err).NotTo(HaveOccurred())

			result := e.Query(ctx, "q", 5)
			Expect(result.Answer).To(ContainSubstring("Could not generate answer"))
			Expect(result.Confidence).To(BeZero())
			Expect(result.Sources).To(BeEmpty())
		})
	})

	Describe("QueryFast", func() {
		It("uses the memory service answer when available", func() {
			mem := testutils.NewMockMemoryDriver()
			mem.Answer = "Fast answer"
			mem.Memories = []memory.Memory{{Content: "m1"}, {Content: "m2"}, {Content: "m3"}}

			e := newEngine(&stubSearcher{}, mem)

			result := e.QueryFast(ctx, "q")
			Expect(result.Answer).To(Equal("Fast answer"))
			Expect(result.Confidence).To(BeNumerically("==", 1.0))
			Expect(result.Sources).To(HaveLen(3))
			Expect(result.Sources[0].SourceType).To(Equal("memory"))
			Expect(gen.Calls()).To(BeZero())
		})

		It("falls back to the full query on quota exhaustion", func() {
			mem := testutils.NewMockMemoryDriver()
			mem.AskErr = memory.ErrQuotaExceeded

			e := newEngine(&stubSearcher{results: []retrieval.Result{decisionHit("d1")}}, mem)

			result := e.QueryFast(ctx, "q")
			Expect(result.Answer).To(Equal("Stripe was chosen for its API."))
			Expect(gen.Calls()).To(Equal(1))
		})

		It("takes the full path when no memory driver is configured", func() {
			e := newEngine(&stubSearcher{results: []retrieval.Result{decisionHit("d1")}}, nil)

			result := e.QueryFast(ctx, "q")
			Expect(result.Answer).To(Equal("Stripe was chosen for its API."))
		})
	})
})
