package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/minutes/pkg/llm"
	"github.com/papercomputeco/minutes/pkg/llm/ollama"
)

var _ = Describe("Generator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("sends a non-streaming chat request and returns the completion", func() {
		var captured map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/chat"))
			Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]string{"role": "assistant", "content": "the answer"},
				"done":    true,
			})
		}))
		defer server.Close()

		g := ollama.NewGenerator(ollama.Config{BaseURL: server.URL, Model: "llama3.2"})

		answer, err := g.Generate(ctx, llm.Request{
			System:      "be terse",
			Prompt:      "why stripe?",
			MaxTokens:   200,
			Temperature: 0.2,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("the answer"))

		Expect(captured["model"]).To(Equal("llama3.2"))
		Expect(captured["stream"]).To(BeFalse())

		messages := captured["messages"].([]any)
		Expect(messages).To(HaveLen(2))
		first := messages[0].(map[string]any)
		Expect(first["role"]).To(Equal("system"))
		Expect(first["content"]).To(Equal("be terse"))

		options := captured["options"].(map[string]any)
		Expect(options["num_predict"]).To(Equal(float64(200)))
		Expect(options["temperature"]).To(BeNumerically("~", 0.2, 0.001))
	})

	It("omits the system message when not set", func() {
		var captured map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())
			json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]string{"role": "assistant", "content": "ok"},
			})
		}))
		defer server.Close()

		g := ollama.NewGenerator(ollama.Config{BaseURL: server.URL})

		_, err := g.Generate(ctx, llm.Request{Prompt: "hello"})
		Expect(err).NotTo(HaveOccurred())

		messages := captured["messages"].([]any)
		Expect(messages).To(HaveLen(1))
		only := messages[0].(map[string]any)
		Expect(only["role"]).To(Equal("user"))
	})

	It("returns ErrUnavailable on a non-200 status", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		g := ollama.NewGenerator(ollama.Config{BaseURL: server.URL})

		_, err := g.Generate(ctx, llm.Request{Prompt: "hello"})
		Expect(err).To(MatchError(llm.ErrUnavailable))
	})

	It("returns ErrUnavailable when the server is unreachable", func() {
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		server.Close()

		g := ollama.NewGenerator(ollama.Config{BaseURL: server.URL})

		_, err := g.Generate(ctx, llm.Request{Prompt: "hello"})
		Expect(err).To(MatchError(llm.ErrUnavailable))
	})
})
