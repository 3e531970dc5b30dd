package driven

import "context"

// GeneratorService produces grounded answers from retrieved context.
// This is an optional service - when nil, ask degrades to
// retrieval-only mode.
//
// Implementations may include:
//   - Ollama (local models)
//   - OpenAI (GPT-4o and friends)
//   - Any OpenAI-compatible inference server
type GeneratorService interface {
	// Chat conducts a conversation and returns the full completion.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ChatStream conducts a conversation and streams the completion as
	// text fragments. The fragment channel is closed when generation
	// finishes; at most one error is then delivered on the error
	// channel before it too is closed. The stream is finite and not
	// restartable. Cancelling ctx tears down the underlying request.
	ChatStream(ctx context.Context, messages []ChatMessage, opts ChatOptions) (<-chan string, <-chan error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
