package interfaces

import (
	"context"
)

// LLMService defines the minimal text-generation capability the summarization
// pipeline needs from a backend. Implementations wrap cloud APIs (Gemini,
// Claude) and are safe for concurrent use by multiple map workers.
type LLMService interface {
	// Generate produces a text completion for the given prompt.
	// Network errors, quota errors, and empty responses are all returned
	// as errors; callers decide whether to degrade or propagate.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - prompt: Full prompt text to send to the model
	//
	// Returns:
	//   - string: Generated completion text
	//   - error: Error if generation fails or yields no text
	Generate(ctx context.Context, prompt string) (string, error)

	// HealthCheck verifies the backend is operational and can handle requests.
	HealthCheck(ctx context.Context) error

	// Provider returns the provider name ("gemini" or "claude") for
	// logging and result metadata.
	Provider() string

	// Close releases resources and performs cleanup operations.
	Close() error
}
