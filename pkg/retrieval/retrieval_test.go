package retrieval_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/minutes/pkg/model"
	"github.com/papercomputeco/minutes/pkg/retrieval"
	testutils "github.com/papercomputeco/minutes/pkg/utils/test"
	"github.com/papercomputeco/minutes/pkg/vector"
	"github.com/papercomputeco/minutes/pkg/vector/inmemory"
)

func TestRetrieval(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Retrieval Suite")
}

var _ = Describe("Adapter", func() {
	var (
		ctx      context.Context
		embedder *testutils.MockEmbedder
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder = testutils.NewMockEmbedder()
	})

	Describe("Index and Search", func() {
		It("indexes into both drivers and searches the primary first", func() {
			primary := testutils.NewMockVectorDriver()
			primary.Results = []vector.QueryResult{
				{
					Document: vector.Document{
						ID:       "decision:d1",
						Content:  "from primary",
						Metadata: vector.Metadata{Source: "decision", EntityID: "d1"},
					},
					Score: 0.9,
				},
			}

			adapter, err := retrieval.NewAdapter(retrieval.Opts{
				Primary:  primary,
				Fallback: inmemory.NewDriver(),
				Embedder: embedder,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(adapter.Index(ctx, "decision:d1", "Use Stripe", vector.Metadata{
				Source:   "decision",
				EntityID: "d1",
			})).To(Succeed())
			Expect(primary.Documents).To(HaveLen(1))

			results := adapter.Search(ctx, "payments", 5)
			Expect(results).To(HaveLen(1))
			Expect(results[0].Content).To(Equal("from primary"))
			Expect(results[0].Source).To(Equal("decision"))
			Expect(results[0].Metadata.EntityID).To(Equal("d1"))
		})

		It("falls back to the local driver when the primary fails", func() {
			primary := testutils.NewMockVectorDriver()
			primary.FailQuery = true

			adapter, err := retrieval.NewAdapter(retrieval.Opts{
				Primary:  primary,
				Fallback: inmemory.NewDriver(),
				Embedder: embedder,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(adapter.Index(ctx, "decision:d1", "Use Stripe for payments",
				vector.Metadata{Source: "decision", EntityID: "d1"})).To(Succeed())

			results := adapter.Search(ctx, "payments", 5)
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("decision:d1"))
		})

		It("falls back when the primary returns zero results", func() {
			primary := testutils.NewMockVectorDriver()

			adapter, err := retrieval.NewAdapter(retrieval.Opts{
				Primary:  primary,
				Fallback: inmemory.NewDriver(),
				Embedder: embedder,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(adapter.Index(ctx, "decision:d1", "Use Stripe for payments",
				vector.Metadata{Source: "decision", EntityID: "d1"})).To(Succeed())
			// wipe the primary's contents so only the fallback has the doc
			primary.Documents = nil

			results := adapter.Search(ctx, "payments", 5)
			Expect(results).To(HaveLen(1))
		})

		It("returns an empty list rather than an error when everything fails", func() {
			primary := testutils.NewMockVectorDriver()
			primary.FailQuery = true
			fallback := testutils.NewMockVectorDriver()
			fallback.FailQuery = true

			adapter, err := retrieval.NewAdapter(retrieval.Opts{
				Primary:  primary,
				Fallback: fallback,
				Embedder: embedder,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(adapter.Search(ctx, "anything", 5)).To(BeEmpty())
		})

		It("returns an empty list when query embedding fails", func() {
			embedder.FailAll = true

			adapter, err := retrieval.NewAdapter(retrieval.Opts{
				Fallback: inmemory.NewDriver(),
				Embedder: embedder,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(adapter.Search(ctx, "anything", 5)).To(BeEmpty())
		})

		It("errors on Index when embedding fails", func() {
			embedder.FailOn = "bad doc"

			adapter, err := retrieval.NewAdapter(retrieval.Opts{
				Fallback: inmemory.NewDriver(),
				Embedder: embedder,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(adapter.Index(ctx, "d1", "bad doc", vector.Metadata{})).NotTo(Succeed())
		})
	})

	Describe("entity helpers", func() {
		It("indexes meetings and decisions with typed metadata", func() {
			fallback := testutils.NewMockVectorDriver()

			adapter, err := retrieval.NewAdapter(retrieval.Opts{
				Fallback: fallback,
				Embedder: embedder,
			})
			Expect(err).NotTo(HaveOccurred())

			meeting := &model.Meeting{
				ID:      "m1",
				Title:   "Payments sync",
				Date:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
				Summary: "Chose a payment provider",
			}
			Expect(adapter.IndexMeeting(ctx, meeting)).To(Succeed())

			decision := &model.Decision{
				ID:        "d1",
				Content:   "Use Stripe for payments",
				Rationale: "Best API",
				Topic:     "payments",
				MeetingID: "m1",
			}
			Expect(adapter.IndexDecision(ctx, decision)).To(Succeed())

			Expect(fallback.Documents).To(HaveLen(2))
			Expect(fallback.Documents[0].ID).To(Equal("meeting:m1"))
			Expect(fallback.Documents[0].Metadata.Source).To(Equal("meeting"))
			Expect(fallback.Documents[1].ID).To(Equal("decision:d1"))
			Expect(fallback.Documents[1].Metadata.Topic).To(Equal("payments"))
			Expect(fallback.Documents[1].Metadata.MeetingID).To(Equal("m1"))
			Expect(fallback.Documents[1].Content).To(ContainSubstring("Rationale"))
		})
	})
})
