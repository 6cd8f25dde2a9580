package llm

import (
	"fmt"
	"os"
)

// NewProvider creates a provider for providerType ("openai" or "ollama").
// API keys and hosts come from the environment. A positive rpm wraps the
// provider in a rate limiter.
func NewProvider(providerType, model string, rpm int) (Provider, error) {
	var p Provider
	switch providerType {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		p = NewOpenAIProvider(apiKey, model, os.Getenv("OPENAI_BASE_URL"))

	case "ollama":
		p = NewOllamaProvider(os.Getenv("OLLAMA_HOST"), model)

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}

	if rpm > 0 {
		p = NewRateLimitedProvider(p, rpm)
	}
	return p, nil
}
