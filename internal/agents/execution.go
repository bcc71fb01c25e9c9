package agents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

// ExecutionAgent turns an approved risk assessment into order parameters.
type ExecutionAgent struct {
	rt *Runtime
}

// NewExecutionAgent creates the execution stage agent.
func NewExecutionAgent(rt *Runtime) *ExecutionAgent {
	return &ExecutionAgent{rt: rt}
}

type orderOutput struct {
	Side        string   `json:"side"`
	Type        string   `json:"type"`
	Quantity    float64  `json:"quantity"`
	LimitPrice  *float64 `json:"limit_price"`
	TimeInForce string   `json:"time_in_force"`
}

type executionOutput struct {
	NoTrade   bool         `json:"no_trade"`
	Order     *orderOutput `json:"order"`
	Narrative string       `json:"narrative"`
}

// Decide produces the execution decision chained to the risk assessment.
// An unapproved assessment always yields a no-trade decision regardless
// of what the model emits; the approval gate is enforced here, not merely
// suggested to the prompt.
func (e *ExecutionAgent) Decide(ctx context.Context, runID uuid.UUID, thesis *trade.Thesis, risk *trade.RiskAssessment) (*trade.ExecutionDecision, error) {
	if thesis == nil || risk == nil {
		return nil, errors.NewStageError(string(trade.StageExecution),
			errors.Wrap(errors.ErrUpstreamMissing, "no risk assessment"))
	}

	out, err := runStage[executionOutput](ctx, e.rt, stageCall{
		RunID:  runID,
		Symbol: risk.Symbol,
		Stage:  trade.StageExecution,
		System: executionPrompt,
		User:   executionUserPrompt(thesis, risk),
	})
	if err != nil {
		return nil, err
	}

	decision := &trade.ExecutionDecision{
		ID:        uuid.New(),
		Symbol:    risk.Symbol,
		RiskID:    risk.ID,
		NoTrade:   out.NoTrade,
		Narrative: out.Narrative,
		CreatedAt: time.Now().UTC(),
	}

	if !risk.Approved {
		decision.NoTrade = true
		return decision, nil
	}

	if !out.NoTrade && out.Order != nil {
		order := &trade.Order{
			Symbol:      risk.Symbol,
			Side:        trade.OrderSide(out.Order.Side),
			Type:        trade.OrderType(out.Order.Type),
			Quantity:    decimal.NewFromFloat(out.Order.Quantity),
			TimeInForce: out.Order.TimeInForce,
		}
		if out.Order.LimitPrice != nil {
			v := decimal.NewFromFloat(*out.Order.LimitPrice)
			order.LimitPrice = &v
		}
		decision.Order = order
	} else {
		decision.NoTrade = true
	}

	return decision, nil
}
