package models

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister handles listing models available through an OpenAI-compatible API
type Lister struct {
	apiKey  string
	baseURL string
	client  *openai.Client
}

// NewLister creates a new model lister. An empty baseURL targets the
// OpenAI API, otherwise any OpenAI-compatible endpoint such as
// OpenRouter works.
func NewLister(apiKey, baseURL string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Lister{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  openai.NewClientWithConfig(config),
	}
}

// ListAvailableModels lists available models, with free models grouped first
func (l *Lister) ListAvailableModels() error {
	if l.apiKey == "" {
		return fmt.Errorf("API key not found. Set OPENROUTER_API_KEY or OPENAI_API_KEY, or configure in .nicoforge.yaml")
	}

	ctx := context.Background()
	models, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	freeModels := []string{}
	paidModels := []string{}

	for _, model := range models.Models {
		if strings.HasSuffix(model.ID, ":free") {
			freeModels = append(freeModels, model.ID)
		} else {
			paidModels = append(paidModels, model.ID)
		}
	}

	sort.Strings(freeModels)
	sort.Strings(paidModels)

	endpoint := "OpenAI"
	if l.baseURL != "" {
		endpoint = l.baseURL
	}
	fmt.Printf("Available models (%s):\n", endpoint)

	fmt.Println("\nFree Models:")
	if len(freeModels) == 0 {
		fmt.Println("  No free models found")
	} else {
		for _, model := range freeModels {
			fmt.Printf("  %s\n", model)
		}
	}

	fmt.Println("\nPaid Models:")
	if len(paidModels) == 0 {
		fmt.Println("  No paid models found")
	} else if len(paidModels) > 25 {
		// Show only models commonly used for translation
		relevantModels := []string{}
		for _, model := range paidModels {
			if strings.Contains(model, "gpt") || strings.Contains(model, "gemini") || strings.Contains(model, "claude") {
				relevantModels = append(relevantModels, model)
			}
		}
		for _, model := range relevantModels {
			fmt.Printf("  %s\n", model)
		}
		fmt.Printf("  ... and %d more models\n", len(paidModels)-len(relevantModels))
	} else {
		for _, model := range paidModels {
			fmt.Printf("  %s\n", model)
		}
	}

	return nil
}
