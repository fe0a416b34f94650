// Command embedcheck verifies that an embedding provider is reachable
// and reports its characteristics. Useful when wiring up Ollama or an
// OpenAI key before pointing the MCP server at a real transcript tree.
//
//	CHATRECALL_EMBEDDING_PROVIDER=ollama go run ./cmd/embedcheck
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chatrecall/chatrecall/internal/embedder"
)

func main() {
	log.SetOutput(os.Stderr)

	emb, err := embedder.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}
	defer func() { _ = emb.Close() }()

	fmt.Printf("Provider:  %s\n", emb.Provider())
	fmt.Printf("Model:     %s\n", emb.Model())
	fmt.Printf("Dimension: %d\n", emb.Dimension())

	sample := "User: how do I rotate the signing keys for the staging cluster"

	start := time.Now()
	result, err := emb.GenerateEmbedding(context.Background(), embedder.EmbeddingRequest{Text: sample})
	if err != nil {
		log.Fatalf("Embedding failed: %v", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("Generated %d-dim vector in %s\n", len(result.Vector), elapsed)

	// A second call for the same text should come from the cache
	start = time.Now()
	if _, err := emb.GenerateEmbedding(context.Background(), embedder.EmbeddingRequest{Text: sample}); err != nil {
		log.Fatalf("Cached embedding failed: %v", err)
	}
	fmt.Printf("Cache lookup in %s\n", time.Since(start))

	batch, err := emb.GenerateBatch(context.Background(), embedder.BatchEmbeddingRequest{
		Texts: []string{
			"Assistant: the keys live in the vault under platform/staging",
			"User: and how often should they rotate",
		},
	})
	if err != nil {
		log.Fatalf("Batch embedding failed: %v", err)
	}
	fmt.Printf("Batch of %d embeddings OK\n", len(batch.Embeddings))
}
