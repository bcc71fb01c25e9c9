package agents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bhardwajRahul/AutoHedge/internal/adapters/marketdata"
	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

// Quant scores the thesis against a market data snapshot.
type Quant struct {
	rt *Runtime
}

// NewQuant creates the quant stage agent.
func NewQuant(rt *Runtime) *Quant {
	return &Quant{rt: rt}
}

type analysisOutput struct {
	Signals          map[string]float64 `json:"signals"`
	ProbabilityScore *float64           `json:"probability_score"`
	Summary          string             `json:"summary"`
}

// Analyze produces the quantitative analysis chained to the thesis. The
// computed snapshot indicators are merged into the model's signal map so
// the record always carries the ground-truth numbers the agent saw.
func (q *Quant) Analyze(ctx context.Context, runID uuid.UUID, thesis *trade.Thesis, snapshot *marketdata.Snapshot) (*trade.Analysis, error) {
	if thesis == nil {
		return nil, errors.NewStageError(string(trade.StageQuant),
			errors.Wrap(errors.ErrUpstreamMissing, "no thesis"))
	}

	out, err := runStage[analysisOutput](ctx, q.rt, stageCall{
		RunID:  runID,
		Symbol: thesis.Symbol,
		Stage:  trade.StageQuant,
		System: quantPrompt,
		User:   quantUserPrompt(thesis, snapshot),
	})
	if err != nil {
		return nil, err
	}

	signals := make(map[string]float64, len(out.Signals)+1)
	if snapshot != nil {
		for k, v := range snapshot.Signals {
			signals[k] = v
		}
	}
	for k, v := range out.Signals {
		signals[k] = v
	}
	if out.ProbabilityScore != nil {
		signals["probability_score"] = *out.ProbabilityScore
	}

	return &trade.Analysis{
		ID:        uuid.New(),
		Symbol:    thesis.Symbol,
		ThesisID:  thesis.ID,
		Signals:   signals,
		Summary:   out.Summary,
		CreatedAt: time.Now().UTC(),
	}, nil
}
