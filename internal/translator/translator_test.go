package translator

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "babelfish", APIKey: "key"})
	if err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	for _, provider := range []string{"openai", "openrouter", "gemini"} {
		_, err := New(Config{Provider: provider})
		if err == nil {
			t.Errorf("Expected error for provider %s without API key", provider)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt("hello world", "")
	if !strings.Contains(p, "hello world") {
		t.Error("Default prompt does not contain the text")
	}
	if !strings.Contains(p, "Hindi") {
		t.Error("Default prompt does not mention the target language")
	}

	custom := buildPrompt("hello", "Translate: %s")
	if custom != "Translate: hello" {
		t.Errorf("Custom prompt not applied, got %q", custom)
	}
}

func TestProviderErrorClassification(t *testing.T) {
	tests := []struct {
		kind      Kind
		transient bool
	}{
		{KindRateLimit, true},
		{KindServer, true},
		{KindTimeout, true},
		{KindAuth, false},
		{KindParse, false},
		{KindEmpty, false},
	}

	for _, tt := range tests {
		err := NewProviderError(tt.kind, errors.New("boom"))
		if IsTransient(err) != tt.transient {
			t.Errorf("Kind %s: expected transient=%v", tt.kind, tt.transient)
		}
	}

	if !IsTransient(context.DeadlineExceeded) {
		t.Error("Deadline exceeded should be transient")
	}
	if IsTransient(errors.New("plain")) {
		t.Error("Plain errors should not be transient")
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := NewProviderError(KindServer, inner)
	if !errors.Is(err, inner) {
		t.Error("ProviderError does not unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "server_error") {
		t.Errorf("Error string missing kind: %q", err.Error())
	}
}

func TestOpenAIEstimateCost(t *testing.T) {
	free, err := NewOpenAITranslator(Config{
		Provider: "openrouter",
		APIKey:   "key",
		Model:    "google/gemini-2.0-flash-thinking-exp:free",
		BaseURL:  "https://openrouter.ai/api/v1",
	})
	if err != nil {
		t.Fatalf("NewOpenAITranslator failed: %v", err)
	}
	if cost := free.EstimateCost(100000); cost != 0 {
		t.Errorf("Free model should cost nothing, got %f", cost)
	}
	if info := free.ModelInfo(); info.Adapter != "openrouter" {
		t.Errorf("Expected openrouter adapter, got %s", info.Adapter)
	}

	paid, err := NewOpenAITranslator(Config{Provider: "openai", APIKey: "key", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("NewOpenAITranslator failed: %v", err)
	}
	if cost := paid.EstimateCost(100000); cost <= 0 {
		t.Errorf("Paid model should have a positive estimate, got %f", cost)
	}
	if info := paid.ModelInfo(); info.Adapter != "openai" || info.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected model info: %+v", info)
	}
}

func TestTranslateBatch_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	tr, err := NewOpenAITranslator(Config{Provider: "openai", APIKey: apiKey})
	if err != nil {
		t.Fatalf("NewOpenAITranslator failed: %v", err)
	}

	translations, err := tr.TranslateBatch(context.Background(), []string{"The sky is blue."})
	if err != nil {
		t.Fatalf("TranslateBatch failed: %v", err)
	}
	if len(translations) != 1 || translations[0] == "" {
		t.Errorf("Expected one non-empty translation, got %v", translations)
	}
	t.Logf("Translation: %s", translations[0])
}
