package llm

import (
	"context"
	"fmt"

	"ai-meal-shopper/internal/config"
)

// NewTextGenerator builds the generator selected by cfg.LLMProvider,
// wrapped with the configured request rate limit. The returned closer
// must be called on shutdown; it is a no-op for HTTP-only providers.
func NewTextGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, func() error, error) {
	noop := func() error { return nil }

	var gen TextGenerator
	closer := noop
	switch cfg.LLMProvider {
	case config.ProviderGroq:
		gen = NewGroqClient(cfg.GroqAPIKey, ModelExtractor, 0.1)
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, noop, err
		}
		gen, closer = client, client.Close
	case config.ProviderAnthropic:
		gen = NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		return nil, noop, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}

	return WithRateLimit(gen, cfg.ExtractorRPM), closer, nil
}
