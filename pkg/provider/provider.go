package provider

import "context"

// Role identifies the author of a prompt message.
type Role string

// Prompt message roles.
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single entry of a structured prompt.
type Message struct {
	Role    Role
	Content string
}

// SystemMessage builds a system-role prompt message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role prompt message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Embedder converts batches of text into embedding vectors.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Embedder interface {
	// Embed converts a batch of text strings into embedding vectors.
	// The result is positional: vector i embeds texts[i].
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of the embedding vectors.
	// Returns 0 until the first successful Embed call.
	Dimensions() int
}

// Generator produces a completion from a structured prompt.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Generator interface {
	// Generate runs the prompt through the backing model and returns the
	// completion text.
	Generate(ctx context.Context, messages []Message) (string, error)
}
