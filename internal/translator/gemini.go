package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiTranslator translates through the Gemini API.
type GeminiTranslator struct {
	apiKey       string
	model        string
	customPrompt string
	requestDelay time.Duration
	timeout      time.Duration
	client       *genai.Client
}

// NewGeminiTranslator creates a translator backed by the genai SDK.
func NewGeminiTranslator(cfg Config) (*GeminiTranslator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not provided for provider %s", cfg.Provider)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &GeminiTranslator{
		apiKey:       cfg.APIKey,
		model:        model,
		customPrompt: cfg.CustomPrompt,
		requestDelay: time.Duration(cfg.RequestDelay * float64(time.Second)),
		timeout:      timeout,
		client:       client,
	}, nil
}

// TranslateBatch translates texts one request at a time. Transient
// failures abort the batch for an intact retry; permanent per-item
// failures yield empty strings.
func (t *GeminiTranslator) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	translations := make([]string, 0, len(texts))

	for i, text := range texts {
		if i > 0 && t.requestDelay > 0 {
			select {
			case <-time.After(t.requestDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		translation, err := t.translateSingle(ctx, text)
		if err != nil {
			if IsTransient(err) {
				return nil, err
			}
			fmt.Printf("Translation failed for batch item %d: %v\n", i, err)
			translation = ""
		}
		translations = append(translations, translation)
	}

	return translations, nil
}

func (t *GeminiTranslator) translateSingle(ctx context.Context, text string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.client.Models.GenerateContent(
		reqCtx,
		t.model,
		genai.Text(buildPrompt(text, t.customPrompt)),
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.3)},
	)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	translation := strings.TrimSpace(resp.Text())
	if translation == "" {
		return "", NewProviderError(KindEmpty, errors.New("empty translation received"))
	}
	return translation, nil
}

// classifyGeminiError maps genai errors onto the failure taxonomy.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return NewProviderError(KindAuth, err)
		case apiErr.Code == 429:
			return NewProviderError(KindRateLimit, err)
		case apiErr.Code >= 500:
			return NewProviderError(KindServer, err)
		default:
			return NewProviderError(KindParse, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewProviderError(KindTimeout, err)
	}
	return NewProviderError(KindServer, err)
}

// EstimateCost estimates the cost in INR of translating wordCount words.
func (t *GeminiTranslator) EstimateCost(wordCount int) float64 {
	const (
		tokenMultiplier = 1.5
		usdPer1kTokens  = 0.001
		inrPerUSD       = 83
	)
	tokens := float64(wordCount) * tokenMultiplier
	return tokens / 1000 * usdPer1kTokens * inrPerUSD
}

// ModelInfo returns a descriptive record of the provider.
func (t *GeminiTranslator) ModelInfo() ModelInfo {
	return ModelInfo{Adapter: "gemini", Model: t.model}
}
