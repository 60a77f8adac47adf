package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/minutes/pkg/llm"
	"github.com/papercomputeco/minutes/pkg/llm/openai"
)

var _ = Describe("Generator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("returns the first choice's message content", func() {
		var captured map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/chat/completions"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer test-key"))
			Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]string{"role": "assistant", "content": "the answer"}},
				},
			})
		}))
		defer server.Close()

		g := openai.NewGenerator(openai.Config{
			BaseURL: server.URL,
			APIKey:  "test-key",
			Model:   "gpt-4o-mini",
		})

		answer, err := g.Generate(ctx, llm.Request{System: "be terse", Prompt: "why stripe?"})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("the answer"))

		Expect(captured["model"]).To(Equal("gpt-4o-mini"))
		messages := captured["messages"].([]any)
		Expect(messages).To(HaveLen(2))
	})

	It("omits the Authorization header when no key is set", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Header.Get("Authorization")).To(BeEmpty())
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]string{"role": "assistant", "content": "ok"}},
				},
			})
		}))
		defer server.Close()

		g := openai.NewGenerator(openai.Config{BaseURL: server.URL})

		_, err := g.Generate(ctx, llm.Request{Prompt: "hello"})
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns ErrUnavailable when the response has no choices", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}))
		defer server.Close()

		g := openai.NewGenerator(openai.Config{BaseURL: server.URL})

		_, err := g.Generate(ctx, llm.Request{Prompt: "hello"})
		Expect(err).To(MatchError(llm.ErrUnavailable))
	})

	It("returns ErrUnavailable on a non-200 status", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		g := openai.NewGenerator(openai.Config{BaseURL: server.URL})

		_, err := g.Generate(ctx, llm.Request{Prompt: "hello"})
		Expect(err).To(MatchError(llm.ErrUnavailable))
	})
})
