// Package cleaner normalizes extracted text before chunking: URLs,
// email addresses and reference markers are stripped line by line and
// whitespace is collapsed.
package cleaner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"codeberg.org/snonux/nicoforge/internal/state"
)

// ErrEmptyInput is returned when the raw text has no usable content.
var ErrEmptyInput = errors.New("input text is empty")

var (
	urlPattern       = regexp.MustCompile(`https?://[^\s]+`)
	emailPattern     = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	referencePattern = regexp.MustCompile(`(?i)\[\d+\]|\(\d+\)|(?:fig\.|figure|table|ref\.)\s*\d+`)
	spacePattern     = regexp.MustCompile(`[ \t]+`)
	blankPattern     = regexp.MustCompile(`\n{3,}`)
)

// Options control which cleanup passes run.
type Options struct {
	RemoveURLs          bool
	RemoveEmails        bool
	RemoveReferences    bool
	NormalizeWhitespace bool
}

// DefaultOptions enables every cleanup pass.
func DefaultOptions() Options {
	return Options{
		RemoveURLs:          true,
		RemoveEmails:        true,
		RemoveReferences:    true,
		NormalizeWhitespace: true,
	}
}

// Stats summarizes one cleaning run.
type Stats struct {
	InputLength  int
	OutputLength int
}

// ReductionPct returns how much of the input was removed, in percent.
func (s Stats) ReductionPct() float64 {
	if s.InputLength == 0 {
		return 0
	}
	return (1 - float64(s.OutputLength)/float64(s.InputLength)) * 100
}

// Cleaner applies the configured cleanup passes to raw text.
type Cleaner struct {
	opts  Options
	store state.Store
}

// NewCleaner creates a cleaner. The store may be nil when no resume
// tracking is wanted.
func NewCleaner(opts Options, store state.Store) *Cleaner {
	return &Cleaner{opts: opts, store: store}
}

// Clean normalizes raw text and returns it with run statistics.
func (c *Cleaner) Clean(raw string) (string, Stats, error) {
	if strings.TrimSpace(raw) == "" {
		return "", Stats{}, ErrEmptyInput
	}

	cleaned := raw
	if c.opts.RemoveURLs {
		cleaned = urlPattern.ReplaceAllString(cleaned, " ")
	}
	if c.opts.RemoveEmails {
		cleaned = emailPattern.ReplaceAllString(cleaned, " ")
	}
	if c.opts.RemoveReferences {
		cleaned = referencePattern.ReplaceAllString(cleaned, " ")
	}
	if c.opts.NormalizeWhitespace {
		cleaned = spacePattern.ReplaceAllString(cleaned, " ")
		cleaned = blankPattern.ReplaceAllString(cleaned, "\n\n")
		lines := strings.Split(cleaned, "\n")
		for i := range lines {
			lines[i] = strings.TrimSpace(lines[i])
		}
		cleaned = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	return cleaned, Stats{InputLength: len(raw), OutputLength: len(cleaned)}, nil
}

// CleanFile reads inputPath, cleans it and writes the result to
// outputPath. When previewPath is non-empty the first 2000 characters are
// written there for a quick manual check. Marks the cleaner stage
// completed on success.
func (c *Cleaner) CleanFile(inputPath, outputPath, previewPath string) (Stats, error) {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read input file: %w", err)
	}

	fmt.Printf("Cleaning text (%d characters)\n", len(raw))

	cleaned, stats, err := c.Clean(string(raw))
	if err != nil {
		return Stats{}, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return Stats{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(cleaned), 0644); err != nil {
		return Stats{}, fmt.Errorf("failed to write cleaned text: %w", err)
	}

	if previewPath != "" {
		preview := cleaned
		if len(preview) > 2000 {
			preview = preview[:2000]
		}
		if err := os.WriteFile(previewPath, []byte(preview), 0644); err != nil {
			return Stats{}, fmt.Errorf("failed to write preview: %w", err)
		}
		fmt.Printf("Preview saved to %s\n", previewPath)
	}

	if c.store != nil {
		err := c.store.MarkCompleted(state.StageCleaner, map[string]any{
			"input_length":  stats.InputLength,
			"output_length": stats.OutputLength,
			"reduction_pct": stats.ReductionPct(),
		})
		if err != nil {
			return Stats{}, err
		}
	}

	fmt.Printf("Cleaning complete: %d -> %d characters\n", stats.InputLength, stats.OutputLength)
	return stats, nil
}
