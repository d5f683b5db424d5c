// Package testutil provides shared test doubles for the pipeline
// packages.
package testutil

import (
	"context"
	"sync"

	"codeberg.org/snonux/nicoforge/internal/translator"
)

// MockTranslator implements translator.Translator for tests. It records
// every batch it receives and can be scripted to fail.
type MockTranslator struct {
	mu    sync.Mutex
	calls [][]string

	// Translate maps one source text to its translation. When nil, a
	// fixed Hindi marker plus the source text is returned.
	Translate func(text string) string

	// FailFirst makes the first N batch calls return Err.
	FailFirst int

	// Err is the error returned while FailFirst calls remain.
	Err error

	// EmptyFor lists source texts that translate to "" (permanent
	// per-item failure).
	EmptyFor map[string]bool

	// CostPerWord drives EstimateCost.
	CostPerWord float64
}

// TranslateBatch returns one translation per input text, in order.
func (m *MockTranslator) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]string, len(texts))
	copy(copied, texts)
	m.calls = append(m.calls, copied)

	if m.FailFirst > 0 {
		m.FailFirst--
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]string, len(texts))
	for i, text := range texts {
		if m.EmptyFor[text] {
			continue
		}
		if m.Translate != nil {
			out[i] = m.Translate(text)
		} else {
			out[i] = "अनुवाद " + text
		}
	}
	return out, nil
}

// Calls returns a copy of every batch received so far.
func (m *MockTranslator) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([][]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// EstimateCost returns CostPerWord times wordCount.
func (m *MockTranslator) EstimateCost(wordCount int) float64 {
	return m.CostPerWord * float64(wordCount)
}

// ModelInfo identifies the mock.
func (m *MockTranslator) ModelInfo() translator.ModelInfo {
	return translator.ModelInfo{Adapter: "mock", Model: "mock-v1"}
}
