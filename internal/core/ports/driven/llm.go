package driven

import "context"

// LLMService generates proposal text and follow-up replies. Adapters exist
// for OpenAI, Anthropic and Ollama.
type LLMService interface {
	// Generate completes a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat answers the last message of a conversation. A leading system
	// message, if any, carries the instruction.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	ModelName() string

	// Ping makes the cheapest request the provider offers to prove the
	// credentials and endpoint work.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions tunes a completion. Zero values leave the provider default.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}

// Chat message roles.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one message of a conversation sent to the provider.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a chat reply. Zero values leave the provider default.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
