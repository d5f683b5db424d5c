package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Merger combines several dataset files into one. Inputs may be JSON or
// CSV; the output format follows the output file's extension.
type Merger struct {
	// Renumber reassigns dense chunk IDs across the merged result so
	// the combined dataset keeps the ascending-ID contract.
	Renumber bool
}

// Merge reads every input dataset, concatenates the pairs in input
// order and writes the combined dataset to outputPath.
func (m *Merger) Merge(inputPaths []string, outputPath string) (int, error) {
	if len(inputPaths) == 0 {
		return 0, fmt.Errorf("no input datasets given")
	}

	var merged []Pair
	for _, path := range inputPaths {
		pairs, err := loadAny(path)
		if err != nil {
			return 0, err
		}
		fmt.Printf("Loaded %d pairs from %s\n", len(pairs), path)
		merged = append(merged, pairs...)
	}

	if m.Renumber {
		for i := range merged {
			merged[i].ChunkID = i
		}
	} else {
		SortPairs(merged)
	}

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".csv":
		if err := WriteCSV(outputPath, merged); err != nil {
			return 0, err
		}
	default:
		if err := WriteJSON(outputPath, merged); err != nil {
			return 0, err
		}
	}

	fmt.Printf("Merged dataset saved to %s (%d pairs)\n", outputPath, len(merged))
	return len(merged), nil
}

func loadAny(path string) ([]Pair, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return loadCSV(path)
	}
	return LoadPairs(path)
}

// loadCSV reads a tabular dataset back into pairs. Only the four
// tabular columns survive a CSV round trip.
func loadCSV(path string) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	pairs := make([]Pair, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 4 {
			return nil, fmt.Errorf("row %d has %d columns, expected 4", i+2, len(record))
		}
		id, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d has invalid chunk_id %q", i+2, record[0])
		}
		pairs = append(pairs, Pair{
			ChunkID:  id,
			English:  record[1],
			Hindi:    record[2],
			Metadata: PairMetadata{SourceFile: record[3]},
		})
	}
	return pairs, nil
}
