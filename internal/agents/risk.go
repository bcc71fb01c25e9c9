package agents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
	"github.com/bhardwajRahul/AutoHedge/pkg/logger"
)

// RiskManager sizes the position and gates execution.
type RiskManager struct {
	rt *Runtime
}

// NewRiskManager creates the risk stage agent.
func NewRiskManager(rt *Runtime) *RiskManager {
	return &RiskManager{rt: rt}
}

type riskOutput struct {
	PositionSize float64  `json:"position_size"`
	StopLoss     *float64 `json:"stop_loss"`
	TakeProfit   *float64 `json:"take_profit"`
	Approved     bool     `json:"approved"`
	Narrative    string   `json:"narrative"`
}

// Assess produces the risk assessment chained to the analysis. A position
// size above the task allocation is clamped; the model is advisory, the
// allocation is not.
func (r *RiskManager) Assess(ctx context.Context, runID uuid.UUID, task trade.Task, thesis *trade.Thesis, analysis *trade.Analysis) (*trade.RiskAssessment, error) {
	if thesis == nil || analysis == nil {
		return nil, errors.NewStageError(string(trade.StageRisk),
			errors.Wrap(errors.ErrUpstreamMissing, "no analysis"))
	}

	out, err := runStage[riskOutput](ctx, r.rt, stageCall{
		RunID:  runID,
		Symbol: analysis.Symbol,
		Stage:  trade.StageRisk,
		System: riskPrompt,
		User:   riskUserPrompt(task, thesis, analysis),
	})
	if err != nil {
		return nil, err
	}

	size := decimal.NewFromFloat(out.PositionSize)
	if size.GreaterThan(task.Allocation) {
		logger.Get().Warnw("clamping position size to allocation",
			"symbol", analysis.Symbol, "proposed", size.String(), "allocation", task.Allocation.String())
		size = task.Allocation
	}

	assessment := &trade.RiskAssessment{
		ID:           uuid.New(),
		Symbol:       analysis.Symbol,
		AnalysisID:   analysis.ID,
		PositionSize: size,
		Approved:     out.Approved,
		Narrative:    out.Narrative,
		CreatedAt:    time.Now().UTC(),
	}
	if out.StopLoss != nil {
		v := decimal.NewFromFloat(*out.StopLoss)
		assessment.StopLoss = &v
	}
	if out.TakeProfit != nil {
		v := decimal.NewFromFloat(*out.TakeProfit)
		assessment.TakeProfit = &v
	}

	return assessment, nil
}
