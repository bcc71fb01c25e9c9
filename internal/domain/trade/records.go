package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

// Stage identifies one of the four pipeline stages
type Stage string

const (
	StageDirector  Stage = "director"
	StageQuant     Stage = "quant"
	StageRisk      Stage = "risk"
	StageExecution Stage = "execution"
)

// Stages lists the pipeline stages in execution order
var Stages = []Stage{StageDirector, StageQuant, StageRisk, StageExecution}

// Direction is the directional call of a thesis
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
	DirectionHold  Direction = "hold"
)

// Thesis is the Director stage output: the trading hypothesis for a symbol.
// Immutable once created.
type Thesis struct {
	ID         uuid.UUID `json:"id"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
	Rationale  string    `json:"rationale"`
	CreatedAt  time.Time `json:"created_at"`
}

// Analysis is the Quant stage output, derived from the thesis plus a market
// data snapshot. Signals maps indicator name to its computed or model-scored
// value. Immutable once created.
type Analysis struct {
	ID       uuid.UUID          `json:"id"`
	Symbol   string             `json:"symbol"`
	ThesisID uuid.UUID          `json:"thesis_id"`
	Signals  map[string]float64 `json:"signals"`
	Summary  string             `json:"summary"`

	CreatedAt time.Time `json:"created_at"`
}

// RiskAssessment is the Risk stage output: sizing, protective levels, and
// the approval gate for execution. Immutable once created.
type RiskAssessment struct {
	ID           uuid.UUID        `json:"id"`
	Symbol       string           `json:"symbol"`
	AnalysisID   uuid.UUID        `json:"analysis_id"`
	PositionSize decimal.Decimal  `json:"position_size"`
	StopLoss     *decimal.Decimal `json:"stop_loss,omitempty"`
	TakeProfit   *decimal.Decimal `json:"take_profit,omitempty"`
	Approved     bool             `json:"approved"`
	Narrative    string           `json:"narrative"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ExecutionDecision is the Execution stage output. When the risk assessment
// was not approved it records an explicit no-trade outcome instead of an
// order; the stage always produces an auditable record.
type ExecutionDecision struct {
	ID             uuid.UUID `json:"id"`
	Symbol         string    `json:"symbol"`
	RiskID         uuid.UUID `json:"risk_id"`
	NoTrade        bool      `json:"no_trade"`
	Order          *Order    `json:"order,omitempty"`
	Narrative      string    `json:"narrative"`
	ConfirmationID string    `json:"confirmation_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TradeRecord aggregates one symbol's full decision trail for one run.
// It is created once by the orchestrator and never mutated afterwards.
type TradeRecord struct {
	ID     uuid.UUID `json:"id"`
	RunID  uuid.UUID `json:"run_id"`
	TaskID uuid.UUID `json:"task_id"`
	Symbol string    `json:"symbol"`

	Thesis    *Thesis            `json:"thesis,omitempty"`
	Analysis  *Analysis          `json:"analysis,omitempty"`
	Risk      *RiskAssessment    `json:"risk,omitempty"`
	Execution *ExecutionDecision `json:"execution,omitempty"`

	Status        Status `json:"status"`
	FailedStage   Stage  `json:"failed_stage,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Complete reports whether all four stage outputs are present
func (r *TradeRecord) Complete() bool {
	return r.Thesis != nil && r.Analysis != nil && r.Risk != nil && r.Execution != nil
}

// ValidateChain verifies the reference-chain invariant: each present stage
// output must reference exactly the prior stage's output for the same
// symbol. A record may be partial (failed/timed out), but any links that do
// exist must be consistent.
func (r *TradeRecord) ValidateChain() error {
	if r.Analysis != nil {
		if r.Thesis == nil {
			return errors.Wrap(errors.ErrUpstreamMissing, "analysis without thesis")
		}
		if r.Analysis.ThesisID != r.Thesis.ID {
			return errors.Newf("analysis %s references thesis %s, record holds %s",
				r.Analysis.ID, r.Analysis.ThesisID, r.Thesis.ID)
		}
	}
	if r.Risk != nil {
		if r.Analysis == nil {
			return errors.Wrap(errors.ErrUpstreamMissing, "risk assessment without analysis")
		}
		if r.Risk.AnalysisID != r.Analysis.ID {
			return errors.Newf("risk %s references analysis %s, record holds %s",
				r.Risk.ID, r.Risk.AnalysisID, r.Analysis.ID)
		}
	}
	if r.Execution != nil {
		if r.Risk == nil {
			return errors.Wrap(errors.ErrUpstreamMissing, "execution decision without risk assessment")
		}
		if r.Execution.RiskID != r.Risk.ID {
			return errors.Newf("execution %s references risk %s, record holds %s",
				r.Execution.ID, r.Execution.RiskID, r.Risk.ID)
		}
	}

	for _, symbol := range []string{
		stageSymbol(r.Thesis != nil, func() string { return r.Thesis.Symbol }),
		stageSymbol(r.Analysis != nil, func() string { return r.Analysis.Symbol }),
		stageSymbol(r.Risk != nil, func() string { return r.Risk.Symbol }),
		stageSymbol(r.Execution != nil, func() string { return r.Execution.Symbol }),
	} {
		if symbol != "" && symbol != r.Symbol {
			return errors.Newf("stage output for %s inside record for %s", symbol, r.Symbol)
		}
	}

	return nil
}

func stageSymbol(present bool, get func() string) string {
	if !present {
		return ""
	}
	return get()
}
