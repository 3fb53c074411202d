package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// JSONSchema constrains a structured completion. Schema follows the
// provider's json_schema response-format shape.
type JSONSchema struct {
	Name   string
	Schema map[string]any
}

// AIServiceAdapter is the port for LLM completions. Implementations must
// honor ctx cancellation and apply their own request timeout.
type AIServiceAdapter interface {
	// Complete returns the assistant text for the conversation.
	Complete(ctx context.Context, model string, messages []Message) (string, error)

	// CompleteJSON asks for schema-constrained JSON output and returns the
	// raw JSON text. Providers without native schema support may emulate it
	// via prompting; callers still validate the result.
	CompleteJSON(ctx context.Context, model string, messages []Message, schema JSONSchema) (string, error)

	// CountTokens returns prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)

	ListModels(ctx context.Context) ([]string, error)
}
