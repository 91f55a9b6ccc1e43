package advisor

import (
	"context"
	"fmt"
)

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	// Provider is "gemini", "anthropic" or empty to pick whichever has a key,
	// preferring Gemini.
	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
}

// NewProvider builds the configured provider. It returns nil, nil when no
// key is available, which leaves the advisor disabled.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		return newGemini(ctx, cfg)
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, nil
		}
		return newAnthropic(cfg)
	case "":
		if cfg.GeminiAPIKey != "" {
			return newGemini(ctx, cfg)
		}
		if cfg.AnthropicAPIKey != "" {
			return newAnthropic(cfg)
		}
		return nil, nil
	}
	return nil, fmt.Errorf("unknown advisor provider %q", cfg.Provider)
}

func newGemini(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	p, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newAnthropic(cfg ProviderConfig) (Provider, error) {
	p, err := NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	if err != nil {
		return nil, err
	}
	return p, nil
}
