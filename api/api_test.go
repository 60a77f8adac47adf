package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/eventstream"
	"github.com/papercomputeco/minutes/pkg/graph"
	"github.com/papercomputeco/minutes/pkg/model"
	"github.com/papercomputeco/minutes/pkg/query"
	"github.com/papercomputeco/minutes/pkg/retrieval"
	"github.com/papercomputeco/minutes/pkg/ripple"
	testutils "github.com/papercomputeco/minutes/pkg/utils/test"
)

// emptySearcher returns no retrieval hits so queries fall back to graph sampling.
type emptySearcher struct{}

func (emptySearcher) Search(_ context.Context, _ string, _ int) []retrieval.Result {
	return nil
}

// capturePublisher records published ripple events.
type capturePublisher struct {
	events []*eventstream.RippleDetectedEvent
}

func (p *capturePublisher) PublishRipple(_ context.Context, event *eventstream.RippleDetectedEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func apiTestStore() *graph.Store {
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
	Expect(store.Supersede("d1", &model.Decision{
		ID:        "d2",
		Content:   "Use Stripe with a PayPal fallback",
		Topic:     "payments",
		MadeBy:    "sarah",
		MeetingID: "m1",
		Status:    model.DecisionConfirmed,
		Timestamp: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
	})).To(Succeed())

	return store
}

var _ = Describe("Server", func() {
	var (
		server    *Server
		store     *graph.Store
		gen       *testutils.MockGenerator
		publisher *capturePublisher
	)

	BeforeEach(func() {
		store = apiTestStore()
		gen = testutils.NewMockGenerator("NOT_AFFECTED")
		publisher = &capturePublisher{}

		engine, err := query.NewEngine(query.Opts{
			Graph:      store,
			Searcher:   emptySearcher{},
			Generator:  gen,
			RetryPause: time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())

		detector, err := ripple.NewDetector(store, gen, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(
			Config{ListenAddr: ":0", Publisher: publisher},
			store, engine, detector, zap.NewNop(),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	getJSON := func(path string, out any) *http.Response {
		req, err := http.NewRequest(http.MethodGet, path, nil)
		Expect(err).NotTo(HaveOccurred())

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())

		if out != nil {
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, out)).To(Succeed())
		}
		return resp
	}

	postJSON := func(path string, payload any, out any) *http.Response {
		body, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())

		req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.app.Test(req, 10000)
		Expect(err).NotTo(HaveOccurred())

		if out != nil {
			data, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(data, out)).To(Succeed())
		}
		return resp
	}

	Describe("GET /ping", func() {
		It("returns pong", func() {
			var out string
			resp := getJSON("/ping", &out)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(out).To(Equal("pong"))
		})
	})

	Describe("GET /graph/stats", func() {
		It("returns entity counts", func() {
			var stats graph.Stats
			resp := getJSON("/graph/stats", &stats)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(stats.Decisions).To(Equal(2))
			Expect(stats.Meetings).To(Equal(1))
			Expect(stats.People).To(Equal(1))
		})
	})

	Describe("GET /graph/decisions/:topic", func() {
		It("returns only active decisions", func() {
			var out struct {
				Topic     string            `json:"topic"`
				Count     int               `json:"count"`
				Decisions []*model.Decision `json:"decisions"`
			}
			resp := getJSON("/graph/decisions/payments", &out)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(out.Count).To(Equal(1))
			Expect(out.Decisions[0].ID).To(Equal("d2"))
		})

		It("returns an empty list for unknown topics", func() {
			var out struct {
				Count int `json:"count"`
			}
			resp := getJSON("/graph/decisions/unknown", &out)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(out.Count).To(Equal(0))
		})
	})

	Describe("GET /graph/history/:topic", func() {
		It("returns the full decision history including superseded entries", func() {
			var out struct {
				Count   int                  `json:"count"`
				History []graph.HistoryEntry `json:"history"`
			}
			resp := getJSON("/graph/history/payments", &out)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(out.Count).To(Equal(2))
			Expect(out.History[0].Decision.ID).To(Equal("d1"))
			Expect(out.History[1].Decision.ID).To(Equal("d2"))
		})
	})

	Describe("POST /v1/query", func() {
		It("rejects an empty question", func() {
			resp := postJSON("/v1/query", QueryRequest{Question: "  "}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("answers using the query engine", func() {
			gen.Response = "Stripe with a PayPal fallback was chosen."

			var result query.Result
			resp := postJSON("/v1/query", QueryRequest{Question: "What did we decide about payments?"}, &result)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(result.Answer).To(Equal("Stripe with a PayPal fallback was chosen."))
			Expect(result.Sources).NotTo(BeEmpty())
		})
	})

	Describe("POST /v1/query/fast", func() {
		It("rejects an empty question", func() {
			resp := postJSON("/v1/query/fast", QueryRequest{}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("falls back to the full path when no memory is configured", func() {
			gen.Response = "Stripe."

			var result query.Result
			resp := postJSON("/v1/query/fast", QueryRequest{Question: "payments?"}, &result)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(result.Answer).To(Equal("Stripe."))
		})
	})

	Describe("POST /v1/ripple", func() {
		It("rejects a missing decision_id", func() {
			resp := postJSON("/v1/ripple", RippleRequest{NewValue: "something"}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a missing new_value", func() {
			resp := postJSON("/v1/ripple", RippleRequest{DecisionID: "d2"}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns an impact report and publishes an event", func() {
			var report ripple.Report
			resp := postJSON("/v1/ripple", RippleRequest{
				DecisionID: "d2",
				NewValue:   "Use PayPal only",
			}, &report)

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(report.ChangeDescription).To(ContainSubstring("Use PayPal only"))

			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].DecisionID).To(Equal("d2"))
			Expect(publisher.events[0].EventType).To(Equal(eventstream.EventTypeRippleDetected))
		})
	})

	Describe("POST /v1/whatif", func() {
		It("rejects a missing topic", func() {
			resp := postJSON("/v1/whatif", WhatIfRequest{Change: "switch provider"}, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("analyzes the latest decision on the topic", func() {
			var report ripple.Report
			resp := postJSON("/v1/whatif", WhatIfRequest{
				Topic:  "payments",
				Change: "switch to PayPal",
			}, &report)

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(report.ChangeDescription).To(ContainSubstring("switch to PayPal"))
			Expect(publisher.events).To(HaveLen(1))
		})
	})
})
