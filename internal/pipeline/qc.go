package pipeline

import (
	"fmt"
	"strings"
	"unicode"

	"codeberg.org/snonux/nicoforge/internal/dataset"
)

// QAConfig controls post-hoc quality sampling of translated pairs.
type QAConfig struct {
	SampleRate          float64 // fraction of pairs to sample, e.g. 0.01
	MinSamples          int     // floor on the sample size
	DevanagariThreshold float64 // min Devanagari share among alphanumerics
	MinLengthRatio      float64 // min len(hindi)/len(english)
	MaxLengthRatio      float64 // max len(hindi)/len(english)
}

// DefaultQAConfig matches the usual pipeline configuration.
func DefaultQAConfig() QAConfig {
	return QAConfig{
		SampleRate:          0.01,
		MinSamples:          50,
		DevanagariThreshold: 0.7,
		MinLengthRatio:      0.5,
		MaxLengthRatio:      2.0,
	}
}

// SampleSize returns max(floor(total*rate), min(minSamples, total)).
func SampleSize(total int, rate float64, minSamples int) int {
	bySampleRate := int(float64(total) * rate)
	floor := minSamples
	if total < floor {
		floor = total
	}
	if bySampleRate > floor {
		return bySampleRate
	}
	return floor
}

// systematicSample draws an evenly spaced sample of size n. The stride
// is total/n, so identical inputs always give the identical sample; no
// randomness keeps QC runs reproducible.
func systematicSample(pairs []dataset.Pair, n int) []dataset.Pair {
	if n <= 0 || len(pairs) == 0 {
		return nil
	}
	step := len(pairs) / n
	if step < 1 {
		step = 1
	}
	sample := make([]dataset.Pair, 0, n)
	for i := 0; i < len(pairs) && len(sample) < n; i += step {
		sample = append(sample, pairs[i])
	}
	return sample
}

// validatePair runs every quality check and returns all triggered
// reason codes, not just the first.
func (q QAConfig) validatePair(english, hindi string) []string {
	var issues []string

	if strings.TrimSpace(hindi) == "" {
		issues = append(issues, "empty_response")
	}
	if devanagariRatio(hindi) < q.DevanagariThreshold {
		issues = append(issues, "insufficient_devanagari")
	}

	engLen := len([]rune(english))
	if engLen < 1 {
		engLen = 1
	}
	ratio := float64(len([]rune(hindi))) / float64(engLen)
	if ratio < q.MinLengthRatio || ratio > q.MaxLengthRatio {
		issues = append(issues, fmt.Sprintf("suspicious_length_ratio_%.2f", ratio))
	}

	lower := strings.ToLower(hindi)
	if strings.Contains(lower, "error") || strings.Contains(hindi, "###") || strings.Contains(hindi, "[ERROR]") {
		issues = append(issues, "error_in_output")
	}

	return issues
}

// devanagariRatio returns the share of Devanagari characters among the
// alphanumeric characters of text. Zero when there are none.
func devanagariRatio(text string) float64 {
	var devanagari, alnum int
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
			if unicode.Is(unicode.Devanagari, r) {
				devanagari++
			}
		}
	}
	if alnum == 0 {
		return 0
	}
	return float64(devanagari) / float64(alnum)
}
