// Package sqlite persists trade records to an embedded sqlite journal.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

// Compile-time check
var _ trade.Repository = (*Journal)(nil)

// Journal implements trade.Repository using sqlx over sqlite. Each stage
// output is stored as its own JSON column so partial records stay
// queryable without decoding the whole trail.
type Journal struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS trade_records (
	id              TEXT PRIMARY KEY,
	run_id          TEXT NOT NULL,
	task_id         TEXT NOT NULL,
	symbol          TEXT NOT NULL,
	status          TEXT NOT NULL,
	failed_stage    TEXT NOT NULL DEFAULT '',
	failure_reason  TEXT NOT NULL DEFAULT '',
	thesis          TEXT,
	analysis        TEXT,
	risk            TEXT,
	execution       TEXT,
	started_at      TIMESTAMP NOT NULL,
	finished_at     TIMESTAMP NOT NULL,
	created_at      TIMESTAMP NOT NULL,
	UNIQUE (run_id, symbol)
);
CREATE INDEX IF NOT EXISTS idx_trade_records_run ON trade_records (run_id);
`

// Open creates the journal database, applying the schema. Parent
// directories are created as needed.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create journal dir %s", dir)
		}
	}

	db, err := sqlx.Connect("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(err, "open journal %s", path)
	}

	// sqlite allows one writer; serialize through a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "apply journal schema")
	}

	return &Journal{db: db}, nil
}

type recordRow struct {
	ID            string         `db:"id"`
	RunID         string         `db:"run_id"`
	TaskID        string         `db:"task_id"`
	Symbol        string         `db:"symbol"`
	Status        string         `db:"status"`
	FailedStage   string         `db:"failed_stage"`
	FailureReason string         `db:"failure_reason"`
	Thesis        sql.NullString `db:"thesis"`
	Analysis      sql.NullString `db:"analysis"`
	Risk          sql.NullString `db:"risk"`
	Execution     sql.NullString `db:"execution"`
	StartedAt     time.Time      `db:"started_at"`
	FinishedAt    time.Time      `db:"finished_at"`
	CreatedAt     time.Time      `db:"created_at"`
}

// Append durably stores one record. Re-appending the same (run, symbol)
// pair replaces the previous row, which makes crash-replay idempotent.
func (j *Journal) Append(ctx context.Context, record *trade.TradeRecord) error {
	if record == nil {
		return errors.Wrap(errors.ErrInvalidInput, "nil record")
	}

	row := recordRow{
		ID:            record.ID.String(),
		RunID:         record.RunID.String(),
		TaskID:        record.TaskID.String(),
		Symbol:        record.Symbol,
		Status:        string(record.Status),
		FailedStage:   string(record.FailedStage),
		FailureReason: record.FailureReason,
		StartedAt:     record.StartedAt.UTC(),
		FinishedAt:    record.FinishedAt.UTC(),
		CreatedAt:     time.Now().UTC(),
	}

	var err error
	if row.Thesis, err = marshalNullable(record.Thesis); err != nil {
		return err
	}
	if row.Analysis, err = marshalNullable(record.Analysis); err != nil {
		return err
	}
	if row.Risk, err = marshalNullable(record.Risk); err != nil {
		return err
	}
	if row.Execution, err = marshalNullable(record.Execution); err != nil {
		return err
	}

	query := `
		INSERT INTO trade_records (
			id, run_id, task_id, symbol, status, failed_stage, failure_reason,
			thesis, analysis, risk, execution, started_at, finished_at, created_at
		) VALUES (
			:id, :run_id, :task_id, :symbol, :status, :failed_stage, :failure_reason,
			:thesis, :analysis, :risk, :execution, :started_at, :finished_at, :created_at
		)
		ON CONFLICT (run_id, symbol) DO UPDATE SET
			id = excluded.id,
			status = excluded.status,
			failed_stage = excluded.failed_stage,
			failure_reason = excluded.failure_reason,
			thesis = excluded.thesis,
			analysis = excluded.analysis,
			risk = excluded.risk,
			execution = excluded.execution,
			finished_at = excluded.finished_at`

	if _, err := j.db.NamedExecContext(ctx, query, row); err != nil {
		return errors.Wrapf(err, "append record for %s", record.Symbol)
	}
	return nil
}

// GetRun returns all records of a run keyed by symbol.
func (j *Journal) GetRun(ctx context.Context, runID uuid.UUID) (map[string]*trade.TradeRecord, error) {
	var rows []recordRow
	query := `SELECT * FROM trade_records WHERE run_id = ? ORDER BY symbol`
	if err := j.db.SelectContext(ctx, &rows, query, runID.String()); err != nil {
		return nil, errors.Wrapf(err, "load run %s", runID)
	}

	records := make(map[string]*trade.TradeRecord, len(rows))
	for i := range rows {
		record, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		records[record.Symbol] = record
	}
	return records, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (r *recordRow) toDomain() (*trade.TradeRecord, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, errors.Wrap(err, "parse record id")
	}
	runID, err := uuid.Parse(r.RunID)
	if err != nil {
		return nil, errors.Wrap(err, "parse run id")
	}
	taskID, err := uuid.Parse(r.TaskID)
	if err != nil {
		return nil, errors.Wrap(err, "parse task id")
	}

	record := &trade.TradeRecord{
		ID:            id,
		RunID:         runID,
		TaskID:        taskID,
		Symbol:        r.Symbol,
		Status:        trade.Status(r.Status),
		FailedStage:   trade.Stage(r.FailedStage),
		FailureReason: r.FailureReason,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
	}

	if err := unmarshalNullable(r.Thesis, &record.Thesis); err != nil {
		return nil, err
	}
	if err := unmarshalNullable(r.Analysis, &record.Analysis); err != nil {
		return nil, err
	}
	if err := unmarshalNullable(r.Risk, &record.Risk); err != nil {
		return nil, err
	}
	if err := unmarshalNullable(r.Execution, &record.Execution); err != nil {
		return nil, err
	}

	return record, nil
}

func marshalNullable(v interface{}) (sql.NullString, error) {
	if v == nil || isNilPointer(v) {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, errors.Wrap(err, "marshal stage output")
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalNullable(src sql.NullString, dst interface{}) error {
	if !src.Valid {
		return nil
	}
	if err := json.Unmarshal([]byte(src.String), dst); err != nil {
		return errors.Wrap(err, "decode stage output")
	}
	return nil
}

func isNilPointer(v interface{}) bool {
	switch t := v.(type) {
	case *trade.Thesis:
		return t == nil
	case *trade.Analysis:
		return t == nil
	case *trade.RiskAssessment:
		return t == nil
	case *trade.ExecutionDecision:
		return t == nil
	}
	return false
}
