// Package dataset holds the parallel English/Hindi pair records and
// writes them out as CSV and JSON datasets.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"codeberg.org/snonux/nicoforge/internal/translator"
)

// PairMetadata carries provenance for one translated pair.
type PairMetadata struct {
	SourceFile   string               `json:"source_file"`
	StartWordIdx int                  `json:"start_word_idx"`
	EndWordIdx   int                  `json:"end_word_idx"`
	Translator   translator.ModelInfo `json:"translator"`
	Timestamp    time.Time            `json:"timestamp"`
	IsDuplicate  bool                 `json:"is_duplicate,omitempty"`
	CanonicalID  *int                 `json:"canonical_id,omitempty"`
}

// Pair is one English/Hindi sentence pair. Created once per successful
// canonical chunk and cloned for each duplicate inheriting it; never
// mutated afterwards.
type Pair struct {
	ChunkID  int          `json:"chunk_id"`
	English  string       `json:"english"`
	Hindi    string       `json:"hindi"`
	Metadata PairMetadata `json:"metadata"`
}

// FailureRecord is one chunk whose translation failed. Append-only.
type FailureRecord struct {
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
	Error   string `json:"error"`
}

// QCFailureRecord is one sampled pair that failed quality validation,
// with every triggered reason code.
type QCFailureRecord struct {
	ChunkID int      `json:"chunk_id"`
	English string   `json:"english"`
	Hindi   string   `json:"hindi"`
	Issues  []string `json:"issues"`
}

// SortPairs orders pairs by chunk ID ascending, the final dataset order.
func SortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ChunkID < pairs[j].ChunkID })
}

// WriteCSV writes the tabular dataset: chunk_id, english, hindi,
// source_file, ordered by chunk ID.
func WriteCSV(path string, pairs []Pair) error {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	SortPairs(sorted)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV dataset: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"chunk_id", "english", "hindi", "source_file"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, pair := range sorted {
		record := []string{
			strconv.Itoa(pair.ChunkID),
			pair.English,
			pair.Hindi,
			pair.Metadata.SourceFile,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV dataset: %w", err)
	}
	return f.Close()
}

// WriteJSON writes the structured dataset with full metadata, ordered by
// chunk ID.
func WriteJSON(path string, pairs []Pair) error {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	SortPairs(sorted)

	return writeJSONFile(path, sorted)
}

// WriteFailures writes the translation failure list.
func WriteFailures(path string, failures []FailureRecord) error {
	return writeJSONFile(path, failures)
}

// WriteQCFailures writes the quality-control failure list.
func WriteQCFailures(path string, failures []QCFailureRecord) error {
	return writeJSONFile(path, failures)
}

// LoadPairs reads a JSON dataset back, used on resume and by the merger.
func LoadPairs(path string) ([]Pair, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	var pairs []Pair
	if err := json.Unmarshal(content, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return pairs, nil
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
