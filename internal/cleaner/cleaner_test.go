package cleaner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCleanEmptyInput(t *testing.T) {
	c := NewCleaner(DefaultOptions(), nil)

	for _, raw := range []string{"", "  \n\t "} {
		_, _, err := c.Clean(raw)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Expected ErrEmptyInput for %q, got %v", raw, err)
		}
	}
}

func TestCleanRemovals(t *testing.T) {
	c := NewCleaner(DefaultOptions(), nil)

	tests := []struct {
		name    string
		raw     string
		gone    []string
		present []string
	}{
		{
			name:    "urls",
			raw:     "See https://example.com/page for details",
			gone:    []string{"https://example.com"},
			present: []string{"See", "for details"},
		},
		{
			name:    "emails",
			raw:     "Contact author@example.org for reprints",
			gone:    []string{"author@example.org"},
			present: []string{"Contact", "for reprints"},
		},
		{
			name:    "references",
			raw:     "As shown [12] in Figure 3 the result holds",
			gone:    []string{"[12]", "Figure 3"},
			present: []string{"As shown", "the result holds"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, _, err := c.Clean(tt.raw)
			if err != nil {
				t.Fatalf("Clean failed: %v", err)
			}
			for _, s := range tt.gone {
				if strings.Contains(cleaned, s) {
					t.Errorf("Expected %q to be removed, got %q", s, cleaned)
				}
			}
			for _, s := range tt.present {
				if !strings.Contains(cleaned, s) {
					t.Errorf("Expected %q to survive, got %q", s, cleaned)
				}
			}
		})
	}
}

func TestCleanWhitespace(t *testing.T) {
	c := NewCleaner(DefaultOptions(), nil)

	cleaned, stats, err := c.Clean("hello    world\n\n\n\n\nagain  \n")
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if cleaned != "hello world\n\nagain" {
		t.Errorf("Unexpected cleaned text: %q", cleaned)
	}
	if stats.OutputLength >= stats.InputLength {
		t.Errorf("Expected reduction, got %d -> %d", stats.InputLength, stats.OutputLength)
	}
	if stats.ReductionPct() <= 0 {
		t.Errorf("Expected positive reduction pct, got %f", stats.ReductionPct())
	}
}

func TestCleanOptionsDisabled(t *testing.T) {
	c := NewCleaner(Options{}, nil)

	raw := "keep https://example.com and author@example.org [1]"
	cleaned, _, err := c.Clean(raw)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if cleaned != raw {
		t.Errorf("Expected text untouched with all passes off, got %q", cleaned)
	}
}

func TestCleanFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "raw.txt")
	output := filepath.Join(dir, "cleaned.txt")
	preview := filepath.Join(dir, "preview.txt")

	raw := "Visit https://example.com now.\n\n\n\nMore   text here."
	if err := os.WriteFile(input, []byte(raw), 0644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}

	c := NewCleaner(DefaultOptions(), nil)
	stats, err := c.CleanFile(input, output, preview)
	if err != nil {
		t.Fatalf("CleanFile failed: %v", err)
	}
	if stats.InputLength != len(raw) {
		t.Errorf("Expected input length %d, got %d", len(raw), stats.InputLength)
	}

	cleaned, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if strings.Contains(string(cleaned), "https://") {
		t.Errorf("Output still contains a URL: %q", cleaned)
	}

	previewContent, err := os.ReadFile(preview)
	if err != nil {
		t.Fatalf("Failed to read preview: %v", err)
	}
	if len(previewContent) == 0 || len(previewContent) > 2000 {
		t.Errorf("Preview has unexpected length %d", len(previewContent))
	}
}
