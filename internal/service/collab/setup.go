package collab

import (
	"fmt"
	"log/slog"

	"inkwell/internal/config"
	"inkwell/internal/domain/services"
	"inkwell/internal/service/collab/providers"
	"inkwell/internal/service/collab/providers/anthropic"
	"inkwell/internal/service/collab/providers/lorem"
)

// SetupProvider selects the assist provider for the configured model.
// The provider is inferred from the model name, so DEFAULT_MODEL=lorem-fast
// runs the whole collaboration loop without an API key.
func SetupProvider(cfg *config.Config, catalog *providers.Catalog, logger *slog.Logger) (services.AssistProvider, error) {
	providerName := providers.InferProvider(cfg.DefaultModel)
	if providerName == "" {
		providerName = cfg.DefaultProvider
	}

	switch providerName {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for model %q", cfg.DefaultModel)
		}
		logger.Info("assist provider configured", "provider", "anthropic", "model", cfg.DefaultModel)
		return anthropic.NewProvider(cfg.AnthropicAPIKey, catalog), nil

	case "lorem":
		logger.Warn("assist provider configured with mock responses", "provider", "lorem", "model", cfg.DefaultModel)
		return lorem.NewProvider(catalog), nil

	default:
		return nil, fmt.Errorf("unknown assist provider %q", providerName)
	}
}
