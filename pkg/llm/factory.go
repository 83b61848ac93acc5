package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quipu-ai/quipu-engine/pkg/config"
)

// NewClient creates the completion client selected by the AI configuration.
// Returns Client to enable dependency injection of mocks.
func NewClient(cfg *config.AIConfig, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case "openai":
		client, err := NewOpenAIClient(&OpenAIConfig{
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
			APIKey:   cfg.APIKey,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return client, nil

	case "anthropic":
		client, err := NewAnthropicClient(&AnthropicConfig{
			Model:  cfg.Model,
			APIKey: cfg.APIKey,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}
