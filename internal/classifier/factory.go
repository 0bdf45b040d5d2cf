package classifier

import (
	"fmt"
	"log/slog"

	"fsort/internal/config"
)

// New builds the classifier selected by cfg. Cloud providers are wrapped
// with a per-minute rate limit when cfg.RequestsPerMinute is positive.
func New(cfg config.ClassifierConfig, logger *slog.Logger) (Classifier, error) {
	opts := Options{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
		Logger:    logger,
	}

	var c Classifier
	switch cfg.Provider {
	case ProviderOllama:
		return NewOllamaClient(opts), nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: API key is not configured")
		}
		c = NewOpenAIClient(ProviderOpenAI, opts)
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic: API key is not configured")
		}
		c = NewAnthropicClient(opts)
	case ProviderCustom:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("custom: base URL is not configured")
		}
		c = NewOpenAIClient(ProviderCustom, opts)
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}

	if cfg.RequestsPerMinute > 0 {
		c = WithRateLimit(c, PerMinute(cfg.RequestsPerMinute))
	}
	return c, nil
}
