// Package embedder generates vector embeddings for conversation segments
// and search queries.
//
// Three providers are supported:
//
//   - ollama: a local Ollama server (default; no API key, fits the
//     local-only design). The first call after startup may be slow while
//     the model loads.
//   - openai: the OpenAI embeddings API (requires OPENAI_API_KEY).
//   - local: deterministic hash-derived vectors with no external
//     dependency, for offline smoke testing only.
//
// # Provider Selection
//
//	emb, err := embedder.NewFromEnv()
//
// Selection order:
//  1. If CHATRECALL_EMBEDDING_PROVIDER is set, use that provider.
//  2. If OPENAI_API_KEY is set, use openai.
//  3. Otherwise use ollama.
//
// # Batching
//
// Indexing embeds all of a session's segments in one batch call:
//
//	resp, err := emb.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{
//	    Texts: segmentTexts,
//	})
//
// Batches may be arbitrarily large; the API providers split them into
// windows of at most MaxBatchSize texts per upstream call and return the
// concatenated results in input order.
//
// # Caching and Retry
//
// Embeddings are cached in an LRU keyed by content hash, so forced
// reindexing of unchanged transcripts does not re-pay the provider cost.
// API providers retry transient failures with exponential backoff.
package embedder
