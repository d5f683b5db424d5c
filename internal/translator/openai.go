package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAITranslator translates through any OpenAI-compatible
// chat-completions endpoint, including OpenRouter via BaseURL.
type OpenAITranslator struct {
	apiKey       string
	model        string
	baseURL      string
	customPrompt string
	requestDelay time.Duration
	timeout      time.Duration
	client       *openai.Client
}

// NewOpenAITranslator creates a translator backed by go-openai.
func NewOpenAITranslator(cfg Config) (*OpenAITranslator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not provided for provider %s", cfg.Provider)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAITranslator{
		apiKey:       cfg.APIKey,
		model:        model,
		baseURL:      cfg.BaseURL,
		customPrompt: cfg.CustomPrompt,
		requestDelay: time.Duration(cfg.RequestDelay * float64(time.Second)),
		timeout:      timeout,
		client:       openai.NewClientWithConfig(clientCfg),
	}, nil
}

// TranslateBatch translates texts one request at a time, honoring the
// configured inter-request delay. A transient failure aborts the whole
// batch so the caller can retry it intact; a permanent per-item failure
// yields an empty string in that slot.
func (t *OpenAITranslator) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
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

func (t *OpenAITranslator) translateSingle(ctx context.Context, text string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(text, t.customPrompt),
			},
		},
		Temperature: 0.3,
	}

	resp, err := t.client.CreateChatCompletion(reqCtx, req)
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", NewProviderError(KindParse, errors.New("response has no choices"))
	}
	translation := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translation == "" {
		return "", NewProviderError(KindEmpty, errors.New("empty translation received"))
	}
	return translation, nil
}

// classifyOpenAIError maps go-openai errors onto the failure taxonomy.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return NewProviderError(KindAuth, err)
		case apiErr.HTTPStatusCode == 429:
			return NewProviderError(KindRateLimit, err)
		case apiErr.HTTPStatusCode >= 500:
			return NewProviderError(KindServer, err)
		default:
			return NewProviderError(KindParse, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewProviderError(KindTimeout, err)
	}
	// Connection drops and such surface as plain transport errors.
	return NewProviderError(KindServer, err)
}

// EstimateCost estimates the cost in INR of translating wordCount words.
// Free-tier models (":free" suffixed, as on OpenRouter) cost nothing.
func (t *OpenAITranslator) EstimateCost(wordCount int) float64 {
	if strings.HasSuffix(t.model, ":free") {
		return 0
	}
	const (
		tokenMultiplier = 1.5
		usdPer1kTokens  = 0.001
		inrPerUSD       = 83
	)
	tokens := float64(wordCount) * tokenMultiplier
	return tokens / 1000 * usdPer1kTokens * inrPerUSD
}

// ModelInfo returns a descriptive record of the provider.
func (t *OpenAITranslator) ModelInfo() ModelInfo {
	adapter := "openai"
	if t.baseURL != "" {
		adapter = "openrouter"
	}
	return ModelInfo{Adapter: adapter, Model: t.model, BaseURL: t.baseURL}
}
