package factory

import (
	"fmt"

	"vault-copilot-be/pkg/llm"
	"vault-copilot-be/pkg/llm/ollama"
)

func NewProvider(providerType, modelName, baseURL string) (llm.Provider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
