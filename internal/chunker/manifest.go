package chunker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Manifest is the persisted result of chunking one text: the ordered
// chunk sequence, aggregate counts and the duplicate→canonical ID map.
// Downstream stages treat it as read-only.
type Manifest struct {
	TotalChunks      int         `json:"total_chunks"`
	UniqueChunks     int         `json:"unique_chunks"`
	DuplicateChunks  int         `json:"duplicate_chunks"`
	ChunkSize        int         `json:"chunk_size"`
	TotalWords       int         `json:"total_words"`
	DeduplicationMap map[int]int `json:"deduplication_map"`
	Chunks           []Chunk     `json:"chunks"`
}

// Save writes the manifest as JSON, creating parent directories as needed.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	content, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a previously saved manifest, used when the chunker
// stage is skipped on resume.
func LoadManifest(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// Canonical returns only the canonical chunks, in ID order.
func (m *Manifest) Canonical() []Chunk {
	canonical := make([]Chunk, 0, m.UniqueChunks)
	for _, c := range m.Chunks {
		if c.IsCanonical {
			canonical = append(canonical, c)
		}
	}
	return canonical
}
