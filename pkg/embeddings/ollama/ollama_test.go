package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/minutes/pkg/embeddings/ollama"
	"github.com/papercomputeco/minutes/pkg/vector"
)

func TestOllamaEmbedder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ollama Embedder Suite")
}

var _ = Describe("Embedder", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("embeds text via the embed endpoint", func() {
		var captured map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())
			json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{0.1, 0.2, 0.3}},
			})
		}))
		defer server.Close()

		embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: server.URL,
			Model:   "nomic-embed-text",
		})
		Expect(err).NotTo(HaveOccurred())

		embedding, err := embedder.Embed(ctx, "Use Stripe for payments")
		Expect(err).NotTo(HaveOccurred())
		Expect(embedding).To(HaveLen(3))
		Expect(embedding[0]).To(BeNumerically("~", 0.1, 0.001))

		Expect(captured["model"]).To(Equal("nomic-embed-text"))
		Expect(captured["input"]).To(Equal("Use Stripe for payments"))
	})

	It("wraps failures in ErrEmbedding", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = embedder.Embed(ctx, "anything")
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})

	It("errors when the server returns no embeddings", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{}})
		}))
		defer server.Close()

		embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = embedder.Embed(ctx, "anything")
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})
})
