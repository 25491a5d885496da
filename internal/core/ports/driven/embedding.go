package driven

import "context"

// EmbeddingService turns text into vectors. Ingestion and retrieval must
// use the same model so plan segments and request summaries are comparable.
// Adapters exist for OpenAI and Ollama.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds texts in one provider call, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length. The postgres schema is sized with it.
	Dimensions() int

	ModelName() string

	// Ping proves the credentials and endpoint work.
	Ping(ctx context.Context) error

	Close() error
}
