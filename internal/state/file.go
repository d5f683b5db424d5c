package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStore keeps one JSON file per stage in a state directory. Every
// update marshals the whole record to a temp file and renames it into
// place, so a crash mid-write leaves the previous record intact.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) statePath(stage string) string {
	return filepath.Join(s.dir, stage+".json")
}

// Load returns the stage record, or false if it is missing or unreadable.
func (s *FileStore) Load(stage string) (*StageState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(stage)
}

func (s *FileStore) load(stage string) (*StageState, bool) {
	content, err := os.ReadFile(s.statePath(stage))
	if err != nil {
		return nil, false
	}
	var st StageState
	if err := json.Unmarshal(content, &st); err != nil {
		// Corrupt state reads as no prior state.
		return nil, false
	}
	return &st, true
}

// IsCompleted reports whether the stage has finished successfully.
func (s *FileStore) IsCompleted(stage string) bool {
	st, ok := s.Load(stage)
	return ok && st.Status == StatusCompleted
}

// CompletedIDs returns the set of item IDs recorded as done.
func (s *FileStore) CompletedIDs(stage string) map[int]struct{} {
	st, ok := s.Load(stage)
	ids := make(map[int]struct{})
	if !ok {
		return ids
	}
	for _, id := range st.Data.CompletedIDs {
		ids[id] = struct{}{}
	}
	return ids
}

// RecordCompleted unions new item IDs into the stage's completion set.
func (s *FileStore) RecordCompleted(stage string, ids ...int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.load(stage)
	if !ok {
		st = &StageState{Module: stage, Status: StatusInProgress}
	}
	st.Data.CompletedIDs = unionIDs(st.Data.CompletedIDs, ids)
	return s.save(st)
}

// MarkInProgress sets the stage status to in_progress.
func (s *FileStore) MarkInProgress(stage string, summary map[string]any) error {
	return s.mark(stage, StatusInProgress, summary)
}

// MarkCompleted finalizes the stage with its summary counts.
func (s *FileStore) MarkCompleted(stage string, summary map[string]any) error {
	return s.mark(stage, StatusCompleted, summary)
}

func (s *FileStore) mark(stage, status string, summary map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.load(stage)
	if !ok {
		st = &StageState{Module: stage}
	}
	st.Status = status
	st.Data.Summary = summary
	return s.save(st)
}

// save rewrites the full record via temp file + rename.
func (s *FileStore) save(st *StageState) error {
	st.Timestamp = time.Now()

	content, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state for %s: %w", st.Module, err)
	}

	target := s.statePath(st.Module)
	tmp, err := os.CreateTemp(s.dir, st.Module+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write state for %s: %w", st.Module, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace state for %s: %w", st.Module, err)
	}
	return nil
}

// Clear removes the record for one stage.
func (s *FileStore) Clear(stage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.statePath(stage))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear state for %s: %w", stage, err)
	}
	return nil
}

// ClearAll removes every stage record.
func (s *FileStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read state directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// unionIDs merges new IDs into existing ones, keeping the result sorted
// and free of duplicates.
func unionIDs(existing, add []int) []int {
	seen := make(map[int]struct{}, len(existing)+len(add))
	merged := make([]int, 0, len(existing)+len(add))
	for _, id := range existing {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	for _, id := range add {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	sort.Ints(merged)
	return merged
}
