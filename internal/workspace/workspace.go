// Package workspace manages the per-run artifact directory: the stage
// audit log and the final run result document.
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/bhardwajRahul/AutoHedge/internal/agents"
	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
	"github.com/bhardwajRahul/AutoHedge/pkg/logger"
)

const (
	auditFileName  = "audit.jsonl"
	resultFileName = "result.json"
	dirPerm        = 0o755
	filePerm       = 0o644
)

// Workspace writes run artifacts under <root>/<run_id>/. The audit log is
// append-only JSONL; concurrent symbol pipelines append through one mutex
// so lines never interleave.
type Workspace struct {
	root string

	mu sync.Mutex
}

// Ensure Workspace implements the stage audit sink
var _ agents.Auditor = (*Workspace)(nil)

// New creates the workspace root if needed.
func New(root string) (*Workspace, error) {
	if root == "" {
		root = "outputs"
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, errors.Wrapf(err, "create workspace root %s", root)
	}
	return &Workspace{root: root}, nil
}

// RunDir returns the artifact directory for a run, creating it if needed.
func (w *Workspace) RunDir(runID uuid.UUID) (string, error) {
	dir := filepath.Join(w.root, runID.String())
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", errors.Wrapf(err, "create run dir %s", dir)
	}
	return dir, nil
}

// Audit appends one stage attempt to the run's audit log. Failures are
// logged and swallowed: a broken audit disk must not fail the pipeline.
func (w *Workspace) Audit(_ context.Context, entry agents.AuditEntry) {
	line, err := json.Marshal(entry)
	if err != nil {
		logger.Get().Errorw("marshal audit entry", "error", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	dir, err := w.RunDir(entry.RunID)
	if err != nil {
		logger.Get().Errorw("audit append", "error", err)
		return
	}

	f, err := os.OpenFile(filepath.Join(dir, auditFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		logger.Get().Errorw("open audit log", "error", err)
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		logger.Get().Errorw("append audit entry", "error", err)
	}
}

// AuditEntries reads back the full audit log for a run.
func (w *Workspace) AuditEntries(runID uuid.UUID) ([]agents.AuditEntry, error) {
	data, err := os.ReadFile(filepath.Join(w.root, runID.String(), auditFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read audit log")
	}

	var entries []agents.AuditEntry
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var entry agents.AuditEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, errors.Wrap(err, "decode audit entry")
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// WriteResult stores the finished run result document.
func (w *Workspace) WriteResult(result *trade.RunResult) (string, error) {
	dir, err := w.RunDir(result.RunID)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal run result")
	}

	path := filepath.Join(dir, resultFileName)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", errors.Wrapf(err, "write run result %s", path)
	}
	return path, nil
}

// ReadResult loads a previously written run result.
func (w *Workspace) ReadResult(runID uuid.UUID) (*trade.RunResult, error) {
	path := filepath.Join(w.root, runID.String(), resultFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "no result for run %s", runID)
		}
		return nil, errors.Wrap(err, "read run result")
	}

	var result trade.RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrap(err, "decode run result")
	}
	return &result, nil
}
