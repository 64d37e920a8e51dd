package prose

import (
	"fmt"
	"strings"
)

// defaultOllamaBaseURL is the OpenAI-compatible endpoint of a local Ollama
const defaultOllamaBaseURL = "http://localhost:11434/v1"

// NewProvider creates a prose provider from configuration. An empty
// provider name means narrative generation is disabled and returns
// (nil, nil).
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		// Ollama speaks the OpenAI API; no key required
		if config.BaseURL == "" {
			config.BaseURL = defaultOllamaBaseURL
		}
		if config.APIKey == "" {
			config.APIKey = "ollama"
		}
		return NewOpenAIProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown prose provider: %s (supported: openai, ollama)", config.Provider)
	}
}
