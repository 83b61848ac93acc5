// Package llm provides language-model client functionality for the query
// pipeline: OpenAI-compatible and Anthropic completion backends behind a
// single interface.
package llm

import (
	"context"
)

// Client defines the language-model boundary. The pipeline treats it as a
// text-to-text function with no observable side effects.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Complete generates a chat completion for the prompt.
	Complete(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// CreateEmbeddings generates embedding vectors for the inputs.
	// Backends without embedding support return an error; callers that can
	// degrade should check SupportsEmbeddings first.
	CreateEmbeddings(ctx context.Context, inputs []string, model string) ([][]float32, error)

	// SupportsEmbeddings reports whether CreateEmbeddings is usable.
	SupportsEmbeddings() bool

	// GetModel returns the configured model name.
	GetModel() string
}

// Ensure implementations satisfy Client at compile time.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
)
