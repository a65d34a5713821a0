package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/smartnote/internal/model"
)

// NewGenerator builds the provider named in cfg. An empty apiKey yields a
// nil Generator, which the Gateway treats as "AI unavailable".
func NewGenerator(ctx context.Context, cfg model.AIConfig, apiKey string) (Generator, error) {
	if apiKey == "" {
		return nil, nil
	}

	switch cfg.Provider {
	case "", "gemini":
		g, err := NewGeminiGenerator(ctx, apiKey, modelFor(cfg))
		if err != nil {
			return nil, err
		}
		return g, nil
	case "openai":
		return NewOpenAIGenerator(apiKey, cfg.BaseURL, modelFor(cfg), cfg.MaxTokens), nil
	case "anthropic":
		return NewAnthropicGenerator(apiKey, cfg.BaseURL, modelFor(cfg), cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// Default models per provider.
const (
	defaultGeminiModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// modelFor returns the configured model, replacing the Gemini default
// when another provider is selected.
func modelFor(cfg model.AIConfig) string {
	if cfg.Model != "" && (cfg.Provider == "" || cfg.Provider == "gemini" || !strings.HasPrefix(cfg.Model, "gemini")) {
		return cfg.Model
	}
	switch cfg.Provider {
	case "openai":
		return defaultOpenAIModel
	case "anthropic":
		return defaultAnthropicModel
	default:
		return defaultGeminiModel
	}
}
