package nli

import (
	"fmt"
	"strings"

	"github.com/lihivismel/Fact-Check/internal/model"
)

// NewBackend creates a new NLI backend based on configuration
func NewBackend(config Config) (Backend, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "tei", "":
		return NewTEIBackend(config)

	case "openai":
		return NewOpenAIBackend(config)

	case "anthropic", "claude":
		return NewAnthropicBackend(config)

	case "ollama":
		return NewOllamaBackend(config)

	default:
		return nil, fmt.Errorf("unknown NLI provider: %s (supported: tei, openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the application config into a backend config
func ConfigFromModel(nliConfig model.NLIConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:   nliConfig.Provider,
		Model:      nliConfig.Model,
		APIKey:     nliConfig.APIKey,
		BaseURL:    nliConfig.BaseURL,
		Timeout:    nliConfig.Timeout,
		MaxTokens:  nliConfig.MaxTokens,
		HTTPProxy:  httpConfig.HTTPProxy,
		HTTPSProxy: httpConfig.HTTPSProxy,
		NoProxy:    httpConfig.NoProxy,
	}
}

// ResolveModel picks the model name for a provider.
// Classifier servers (tei) take NLI_MODEL_NAME from the score config first;
// LLM judges only use an explicitly configured model and otherwise fall back
// to their own default.
func ResolveModel(provider, configured, scoreModel string) string {
	switch strings.ToLower(provider) {
	case "tei", "":
		if scoreModel != "" {
			return scoreModel
		}
		if configured != "" {
			return configured
		}
		return model.DefaultNLIModel
	default:
		return configured
	}
}
