package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps one row per stage in a small SQLite database. Each
// update rewrites the stage's whole row, matching the full-record rewrite
// contract of the file backend.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the state database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS stages (
		module TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		data TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create stages table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns the stage record, or false if it is missing or unreadable.
func (s *SQLiteStore) Load(stage string) (*StageState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(stage)
}

func (s *SQLiteStore) load(stage string) (*StageState, bool) {
	var status, timestamp, data string
	row := s.db.QueryRow(`SELECT status, timestamp, data FROM stages WHERE module = ?`, stage)
	if err := row.Scan(&status, &timestamp, &data); err != nil {
		return nil, false
	}

	st := &StageState{Module: stage, Status: status}
	if ts, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
		st.Timestamp = ts
	}
	if err := json.Unmarshal([]byte(data), &st.Data); err != nil {
		// Corrupt state reads as no prior state.
		return nil, false
	}
	return st, true
}

// IsCompleted reports whether the stage has finished successfully.
func (s *SQLiteStore) IsCompleted(stage string) bool {
	st, ok := s.Load(stage)
	return ok && st.Status == StatusCompleted
}

// CompletedIDs returns the set of item IDs recorded as done.
func (s *SQLiteStore) CompletedIDs(stage string) map[int]struct{} {
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
func (s *SQLiteStore) RecordCompleted(stage string, ids ...int) error {
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
func (s *SQLiteStore) MarkInProgress(stage string, summary map[string]any) error {
	return s.mark(stage, StatusInProgress, summary)
}

// MarkCompleted finalizes the stage with its summary counts.
func (s *SQLiteStore) MarkCompleted(stage string, summary map[string]any) error {
	return s.mark(stage, StatusCompleted, summary)
}

func (s *SQLiteStore) mark(stage, status string, summary map[string]any) error {
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

func (s *SQLiteStore) save(st *StageState) error {
	st.Timestamp = time.Now()

	data, err := json.Marshal(st.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal state for %s: %w", st.Module, err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO stages (module, status, timestamp, data) VALUES (?, ?, ?, ?)`,
		st.Module, st.Status, st.Timestamp.Format(time.RFC3339Nano), string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save state for %s: %w", st.Module, err)
	}
	return nil
}

// Clear removes the record for one stage.
func (s *SQLiteStore) Clear(stage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM stages WHERE module = ?`, stage); err != nil {
		return fmt.Errorf("failed to clear state for %s: %w", stage, err)
	}
	return nil
}

// ClearAll removes every stage record.
func (s *SQLiteStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM stages`); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}
