package agents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
)

// AuditEntry records one stage agent attempt: the prompt sent, the raw
// response received, and whether it survived validation. Every attempt is
// audited, including the ones that are retried away.
type AuditEntry struct {
	RunID     uuid.UUID   `json:"run_id"`
	Symbol    string      `json:"symbol"`
	Stage     trade.Stage `json:"stage"`
	Attempt   int         `json:"attempt"`
	Prompt    string      `json:"prompt"`
	Response  string      `json:"response"`
	Valid     bool        `json:"valid"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Auditor receives stage attempt records. Audit failures must not break
// the pipeline; implementations log and move on.
type Auditor interface {
	Audit(ctx context.Context, entry AuditEntry)
}

// NopAuditor discards audit entries.
type NopAuditor struct{}

func (NopAuditor) Audit(context.Context, AuditEntry) {}
