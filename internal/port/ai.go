package port

import "context"

// AIProvider abstracts the LLM backend for chat completions.
// Implementations can target OpenAI or any compatible API.
type AIProvider interface {
	// ModelName returns the identifier of the chat model being used.
	ModelName() string

	// Chat sends a prompt and returns the model's response text.
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ChatVision sends a prompt together with a base64-encoded JPEG image
	// and returns the model's response text.
	ChatVision(ctx context.Context, systemPrompt, userPrompt, imageBase64 string) (string, error)
}
