package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/snonux/nicoforge/internal/state"
)

var (
	// ErrEmptyText is returned when the input has no non-whitespace content.
	ErrEmptyText = errors.New("input text is empty")

	// ErrInvalidChunkSize is returned when the configured chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)

// Chunk is one fixed-size window of words from the cleaned text. IDs are
// dense, 0-based and assigned in text order. A chunk is never mutated
// after deduplication has resolved its canonical link.
type Chunk struct {
	ID           int    `json:"chunk_id"`
	Text         string `json:"text"`
	Hash         string `json:"hash"`
	StartWordIdx int    `json:"start_word_idx"`
	EndWordIdx   int    `json:"end_word_idx"`
	WordCount    int    `json:"word_count"`
	SourceFile   string `json:"source_file"`
	IsCanonical  bool   `json:"is_canonical"`
	CanonicalID  *int   `json:"canonical_id,omitempty"`
}

// Chunker splits cleaned text into fixed-size word chunks and
// deduplicates them by content hash.
type Chunker struct {
	chunkSize    int
	manifestPath string
	store        state.Store

	// Dedup toggles exact-match deduplication.
	Dedup bool

	// FuzzyMatching is reserved for near-duplicate detection. It is
	// accepted from configuration but currently a no-op: only exact
	// hash matches are ever linked.
	FuzzyMatching bool
}

// NewChunker creates a chunker writing its manifest to manifestPath.
// The store may be nil when no resume tracking is wanted.
func NewChunker(chunkSize int, manifestPath string, store state.Store) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, chunkSize)
	}
	return &Chunker{
		chunkSize:    chunkSize,
		manifestPath: manifestPath,
		store:        store,
		Dedup:        true,
	}, nil
}

// Chunk splits text into chunkSize-word windows, hashes and deduplicates
// them, persists the manifest and returns it. sourceLabel names the
// original source in each chunk's metadata.
func (c *Chunker) Chunk(text, sourceLabel string) (*Manifest, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, ErrEmptyText
	}
	totalWords := len(words)

	fmt.Printf("Chunking %d words into %d-word segments\n", totalWords, c.chunkSize)

	chunks := make([]Chunk, 0, (totalWords+c.chunkSize-1)/c.chunkSize)
	nextProgress := totalWords / 10
	for i := 0; i < totalWords; i += c.chunkSize {
		end := i + c.chunkSize
		if end > totalWords {
			end = totalWords
		}
		chunkText := strings.Join(words[i:end], " ")

		chunks = append(chunks, Chunk{
			ID:           len(chunks),
			Text:         chunkText,
			Hash:         hashText(chunkText),
			StartWordIdx: i,
			EndWordIdx:   end,
			WordCount:    end - i,
			SourceFile:   sourceLabel,
			IsCanonical:  true,
		})

		if nextProgress > 0 && end >= nextProgress {
			fmt.Printf("  %d/%d words chunked\n", end, totalWords)
			nextProgress += totalWords / 10
		}
	}
	fmt.Printf("Created %d chunks\n", len(chunks))

	dedupMap := map[int]int{}
	if c.Dedup {
		dedupMap = deduplicate(chunks)
	}

	manifest := &Manifest{
		TotalChunks:      len(chunks),
		UniqueChunks:     len(chunks) - len(dedupMap),
		DuplicateChunks:  len(dedupMap),
		ChunkSize:        c.chunkSize,
		TotalWords:       totalWords,
		DeduplicationMap: dedupMap,
		Chunks:           chunks,
	}

	if err := manifest.Save(c.manifestPath); err != nil {
		return nil, err
	}
	fmt.Printf("Chunks manifest saved to %s\n", c.manifestPath)

	if c.store != nil {
		err := c.store.MarkCompleted(state.StageChunker, map[string]any{
			"total_chunks":     manifest.TotalChunks,
			"unique_chunks":    manifest.UniqueChunks,
			"duplicate_chunks": manifest.DuplicateChunks,
		})
		if err != nil {
			return nil, err
		}
	}

	return manifest, nil
}

// hashText returns the SHA-256 hex digest used for exact-match dedup.
func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// deduplicate marks every chunk after the first occurrence of a hash as
// non-canonical and links it to the first one. First occurrence wins.
// Returns the duplicate→canonical ID map.
func deduplicate(chunks []Chunk) map[int]int {
	hashToCanonical := make(map[string]int, len(chunks))
	dedupMap := make(map[int]int)

	for i := range chunks {
		if canonicalID, ok := hashToCanonical[chunks[i].Hash]; ok {
			id := canonicalID
			chunks[i].IsCanonical = false
			chunks[i].CanonicalID = &id
			dedupMap[chunks[i].ID] = canonicalID
		} else {
			hashToCanonical[chunks[i].Hash] = chunks[i].ID
		}
	}

	if len(dedupMap) > 0 {
		fmt.Printf("Found %d duplicates (%.1f%%). Unique chunks: %d\n",
			len(dedupMap),
			float64(len(dedupMap))/float64(len(chunks))*100,
			len(chunks)-len(dedupMap))
	} else {
		fmt.Println("No duplicates found")
	}

	return dedupMap
}
