package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// Ingestion and query both go through this gateway; without one,
// the engine cannot operate.
//
// Implementations are stateless per call and must be safe for
// concurrent use. Transient provider failures are retried internally
// with bounded exponential backoff; permanent failures (malformed
// input, authentication) are returned immediately wrapped in
// domain.ErrEmbedding.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding per input text, in input order.
	// Inputs are split into provider-sized batches internally. A count
	// or dimension mismatch from the provider is an error; partial
	// results are never returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is fixed per model and must match the store's dimension.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup before committing to ingestion.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
