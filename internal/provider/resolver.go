package provider

import (
	"fmt"
	"strings"

	"github.com/signaldesk/signaldesk/internal/config"
)

// Resolve creates the configured LLMProvider. Providers.Default selects
// the client; missing credentials are an error at startup rather than a
// silent failure on the first reasoning call.
func Resolve(cfg *config.Config) (LLMProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Providers.Default)) {
	case "", "gemini":
		if cfg.Providers.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini provider selected but no API key configured")
		}
		model := cfg.Providers.Gemini.Model
		if model == "" {
			model = cfg.Model.Name
		}
		return NewGeminiProvider(cfg.Providers.Gemini.APIKey, model), nil
	case "openai":
		if cfg.Providers.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai provider selected but no API key configured")
		}
		model := cfg.Providers.OpenAI.Model
		if model == "" {
			model = cfg.Model.Name
		}
		return NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.APIBase, model), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Providers.Default)
	}
}
