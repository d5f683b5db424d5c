package translator

import (
	"context"
	"fmt"
)

// ModelInfo describes the provider behind a Translator.
type ModelInfo struct {
	Adapter string `json:"adapter"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
}

// Translator is the capability contract the orchestrator depends on.
// Implementations are stateless per call.
type Translator interface {
	// TranslateBatch translates English texts to Hindi. The result has
	// the same length and order as the input; an empty string marks an
	// item that failed permanently within an otherwise usable response.
	TranslateBatch(ctx context.Context, texts []string) ([]string, error)

	// EstimateCost estimates the cost (INR) of translating wordCount words.
	EstimateCost(wordCount int) float64

	// ModelInfo returns a descriptive record of the provider.
	ModelInfo() ModelInfo
}

// Config selects and configures a concrete provider.
type Config struct {
	Provider     string // "openai" (also speaks OpenRouter) or "gemini"
	APIKey       string
	Model        string
	BaseURL      string // OpenAI-compatible endpoint override
	CustomPrompt string // optional prompt template with a %s slot
	RequestDelay float64 // seconds between items within a batch
	TimeoutSecs  int
}

// New creates the translator named by cfg.Provider.
func New(cfg Config) (Translator, error) {
	switch cfg.Provider {
	case "openai", "openrouter":
		return NewOpenAITranslator(cfg)
	case "gemini":
		return NewGeminiTranslator(cfg)
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", cfg.Provider)
	}
}

// defaultPrompt is the translation instruction sent when no custom
// prompt is configured.
const defaultPrompt = `Translate the following English text to Hindi.
Maintain the tone, style, and meaning accurately.
Output ONLY the Hindi translation, no explanations.

English text:
%s

Hindi translation:`

// buildPrompt formats the translation prompt for one text.
func buildPrompt(text, custom string) string {
	if custom != "" {
		return fmt.Sprintf(custom, text)
	}
	return fmt.Sprintf(defaultPrompt, text)
}
