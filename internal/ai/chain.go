package ai

import (
	"context"
	"fmt"
	"log/slog"
)

// ProviderConfig carries the key and model of every supported provider. An
// empty key leaves that provider out of the chain.
type ProviderConfig struct {
	AnthropicAPIKey string
	AnthropicModel  string
	DeepSeekAPIKey  string
	DeepSeekModel   string
	GeminiAPIKey    string
	GeminiModel     string
}

// NewNarratorChain builds the failover chain Anthropic → DeepSeek → Gemini
// from whichever providers have keys. It returns a nil Narrator when none do,
// which callers treat as "always use the fallback narrative". A single
// configured provider is returned unwrapped.
func NewNarratorChain(ctx context.Context, cfg ProviderConfig, logger *slog.Logger) (Narrator, error) {
	var providers []Narrator
	var names []string

	if cfg.AnthropicAPIKey != "" {
		providers = append(providers, NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel))
		names = append(names, "anthropic")
	}
	if cfg.DeepSeekAPIKey != "" {
		providers = append(providers, NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekModel))
		names = append(names, "deepseek")
	}
	if cfg.GeminiAPIKey != "" {
		g, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("narrator chain: %w", err)
		}
		providers = append(providers, g)
		names = append(names, "gemini")
	}

	switch len(providers) {
	case 0:
		logger.Info("ai: no narrative provider configured, using fallback text")
		return nil, nil
	case 1:
		logger.Info("ai: using single narrative provider", "provider", names[0])
		return providers[0], nil
	default:
		logger.Info("ai: using narrative provider chain", "providers", names)
		return NewFallbackNarrator(logger, providers...), nil
	}
}
