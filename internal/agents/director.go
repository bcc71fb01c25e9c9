package agents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
)

// Director generates the trading thesis for a symbol.
type Director struct {
	rt *Runtime
}

// NewDirector creates the director stage agent.
func NewDirector(rt *Runtime) *Director {
	return &Director{rt: rt}
}

type thesisOutput struct {
	Direction  string  `json:"direction"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// Thesis produces the directional call for one symbol.
func (d *Director) Thesis(ctx context.Context, runID uuid.UUID, task trade.Task, symbol string) (*trade.Thesis, error) {
	out, err := runStage[thesisOutput](ctx, d.rt, stageCall{
		RunID:  runID,
		Symbol: symbol,
		Stage:  trade.StageDirector,
		System: directorPrompt,
		User:   directorUserPrompt(task, symbol),
	})
	if err != nil {
		return nil, err
	}

	return &trade.Thesis{
		ID:         uuid.New(),
		Symbol:     symbol,
		Direction:  trade.Direction(out.Direction),
		Confidence: out.Confidence,
		Rationale:  out.Rationale,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
