package state

import (
	"encoding/json"
	"time"
)

// Stage status values.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Well-known stage names.
const (
	StageCleaner     = "cleaner"
	StageChunker     = "chunker"
	StageTranslation = "translation"
)

// StageState is the durable record kept for one pipeline stage.
type StageState struct {
	Module    string    `json:"module"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      StageData `json:"data"`
}

// StageData carries the per-item completion set and the stage summary.
// On the wire the summary keys are flattened next to completed_ids, so
// state files stay readable with any JSON tooling.
type StageData struct {
	CompletedIDs []int
	Summary      map[string]any
}

// MarshalJSON flattens Summary keys alongside completed_ids.
func (d StageData) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Summary)+1)
	for k, v := range d.Summary {
		m[k] = v
	}
	if len(d.CompletedIDs) > 0 {
		m["completed_ids"] = d.CompletedIDs
	}
	return json.Marshal(m)
}

// UnmarshalJSON splits completed_ids back out of the flattened object.
func (d *StageData) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	if raw, ok := m["completed_ids"]; ok {
		if err := json.Unmarshal(raw, &d.CompletedIDs); err != nil {
			return err
		}
		delete(m, "completed_ids")
	}
	if len(m) > 0 {
		d.Summary = make(map[string]any, len(m))
		for k, raw := range m {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			d.Summary[k] = v
		}
	}
	return nil
}

// Store is the durable record of stage completion used for resume.
//
// Reads are best-effort: a missing or corrupt record is reported as "no
// prior state", never as an error, so an interrupted run can always be
// picked up again. Writes rewrite the stage's full record; a crash mid
// write must never corrupt previously durable state.
type Store interface {
	// Load returns the stage record, or false if none is durable.
	Load(stage string) (*StageState, bool)

	// IsCompleted reports whether the stage has finished successfully.
	IsCompleted(stage string) bool

	// CompletedIDs returns the set of item IDs recorded as done.
	CompletedIDs(stage string) map[int]struct{}

	// RecordCompleted unions new item IDs into the stage's completion
	// set. Safe to call repeatedly with overlapping IDs and from
	// concurrent batch workers.
	RecordCompleted(stage string, ids ...int) error

	// MarkInProgress sets the stage status to in_progress.
	MarkInProgress(stage string, summary map[string]any) error

	// MarkCompleted finalizes the stage with its summary counts. The
	// completion set recorded so far is preserved.
	MarkCompleted(stage string, summary map[string]any) error

	// Clear removes the record for one stage.
	Clear(stage string) error

	// ClearAll removes every stage record.
	ClearAll() error
}
