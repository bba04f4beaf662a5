package llm

import (
	"fmt"
	"strings"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
)

// NewProvider creates a new decision-service provider based on configuration.
// Providers created through the factory share one rate limiter.
func NewProvider(config Config) (Provider, error) {
	limiter := NewLimiter(config.RequestsPerSecond, config.Burst)

	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config, limiter)

	case "gemini", "google":
		return NewGeminiProvider(config, limiter)

	case "":
		// No provider configured - return nil (decisions disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, gemini)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:          modelConfig.Provider,
		Model:             modelConfig.Model,
		APIKey:            modelConfig.APIKey,
		BaseURL:           modelConfig.BaseURL,
		Timeout:           modelConfig.Timeout,
		MaxTokens:         modelConfig.MaxTokens,
		RequestsPerSecond: modelConfig.RequestsPerSecond,
		Burst:             modelConfig.Burst,
	}
}
