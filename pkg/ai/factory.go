package ai

import (
	"fmt"

	"sentry-backend/pkg/gemini"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini" or "ollama"

	// Gemini config
	GeminiAPIKey string
	GeminiModel  string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewCrashAnalyzer creates a CrashAnalyzer based on the config.
// This is the factory function - switch AI provider by changing config.Provider
func NewCrashAnalyzer(cfg Config) (CrashAnalyzer, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGenerativeAnalyzer(gemini.NewService(cfg.GeminiAPIKey, cfg.GeminiModel)), nil

	case ProviderOllama:
		return NewGenerativeAnalyzer(NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)), nil

	default:
		// Default to Gemini if API key is available, otherwise Ollama
		if cfg.GeminiAPIKey != "" {
			return NewGenerativeAnalyzer(gemini.NewService(cfg.GeminiAPIKey, cfg.GeminiModel)), nil
		}
		return NewGenerativeAnalyzer(NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel)), nil
	}
}
