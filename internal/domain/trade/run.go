package trade

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the terminal outcome of one symbol's pipeline
type Status string

const (
	// StatusCompleted - all four stages produced valid outputs
	StatusCompleted Status = "completed"

	// StatusRejected - pipeline completed but the gateway rejected the order
	StatusRejected Status = "rejected"

	// StatusTimedOut - the run deadline expired before the pipeline finished
	StatusTimedOut Status = "timed_out"
)

// FailedStatus builds the status string for a pipeline that failed at the
// given stage, e.g. "failed:quant"
func FailedStatus(stage Stage) Status {
	return Status("failed:" + string(stage))
}

// IsFailed reports whether the status carries a failed stage
func (s Status) IsFailed() bool {
	return strings.HasPrefix(string(s), "failed:")
}

// FailedStage extracts the stage from a failed status, or "" otherwise
func (s Status) FailedStage() Stage {
	if !s.IsFailed() {
		return ""
	}
	return Stage(strings.TrimPrefix(string(s), "failed:"))
}

// RunResult is the aggregate outcome of one run: exactly one trade record
// per input symbol, keyed by symbol.
type RunResult struct {
	RunID      uuid.UUID               `json:"run_id"`
	Task       Task                    `json:"task"`
	Records    map[string]*TradeRecord `json:"records"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
}

// NewRunResult creates a run result shell for the given task and symbols
func NewRunResult(task Task, symbols []string) *RunResult {
	return &RunResult{
		RunID:     uuid.New(),
		Task:      task,
		Records:   make(map[string]*TradeRecord, len(symbols)),
		StartedAt: time.Now().UTC(),
	}
}

// Symbols returns the record keys in a stable order
func (r *RunResult) Symbols() []string {
	out := make([]string, 0, len(r.Records))
	for s := range r.Records {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Completed counts records that finished with StatusCompleted
func (r *RunResult) Completed() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// Validate checks the run-level invariants: one record per symbol, every
// record tagged with this run, and every record's reference chain intact
func (r *RunResult) Validate() error {
	for symbol, rec := range r.Records {
		if rec == nil {
			return fmt.Errorf("nil record for symbol %s", symbol)
		}
		if rec.Symbol != symbol {
			return fmt.Errorf("record for %s stored under key %s", rec.Symbol, symbol)
		}
		if rec.RunID != r.RunID {
			return fmt.Errorf("record %s belongs to run %s, not %s", rec.ID, rec.RunID, r.RunID)
		}
		if err := rec.ValidateChain(); err != nil {
			return fmt.Errorf("record for %s: %w", symbol, err)
		}
	}
	return nil
}

// Repository persists trade records as they are produced and serves them
// back for replay and inspection
type Repository interface {
	// Append durably stores a record immediately after its pipeline finishes
	Append(ctx context.Context, record *TradeRecord) error

	// GetRun returns all records stored for a run, keyed by symbol
	GetRun(ctx context.Context, runID uuid.UUID) (map[string]*TradeRecord, error)

	// Close releases the underlying store
	Close() error
}
