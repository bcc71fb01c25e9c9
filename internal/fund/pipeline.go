// Package fund orchestrates the trading pipeline: the per-symbol stage
// sequence and the run-level fan-out across a portfolio.
package fund

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bhardwajRahul/AutoHedge/internal/adapters/gateway"
	"github.com/bhardwajRahul/AutoHedge/internal/adapters/marketdata"
	"github.com/bhardwajRahul/AutoHedge/internal/agents"
	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/internal/metrics"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
	"github.com/bhardwajRahul/AutoHedge/pkg/logger"
)

// Pipeline runs the four stages in strict order for one symbol. It never
// returns an error: every outcome, including failure and timeout, is
// encoded in the TradeRecord so the run result can enumerate every
// requested symbol.
type Pipeline struct {
	director  *agents.Director
	quant     *agents.Quant
	risk      *agents.RiskManager
	execution *agents.ExecutionAgent

	market  marketdata.Provider
	gateway gateway.Gateway

	retryLimit int
}

// NewPipeline wires the stage agents to their external dependencies.
func NewPipeline(rt *agents.Runtime, market marketdata.Provider, gw gateway.Gateway, retryLimit int) *Pipeline {
	if retryLimit < 0 {
		retryLimit = 0
	}
	return &Pipeline{
		director:   agents.NewDirector(rt),
		quant:      agents.NewQuant(rt),
		risk:       agents.NewRiskManager(rt),
		execution:  agents.NewExecutionAgent(rt),
		market:     market,
		gateway:    gw,
		retryLimit: retryLimit,
	}
}

// Run executes Director -> Quant -> Risk -> Execution for one symbol.
//
// ctx carries the run deadline. It gates stage STARTS only: before each
// stage the deadline is checked, and once it has passed no new stage
// begins and the record is marked timed out. The stage in flight runs
// under a detached context so it can finish cleanly; each stage is
// bounded by its own client timeouts.
func (p *Pipeline) Run(ctx context.Context, runID uuid.UUID, task trade.Task, symbol string) *trade.TradeRecord {
	record := &trade.TradeRecord{
		ID:        uuid.New(),
		RunID:     runID,
		TaskID:    task.ID,
		Symbol:    symbol,
		StartedAt: time.Now().UTC(),
	}
	log := logger.Get().With("run_id", runID, "symbol", symbol)
	stageCtx := context.WithoutCancel(ctx)

	// Director
	if expired(ctx) {
		return p.timedOut(record, trade.StageDirector, log)
	}
	thesis, err := p.director.Thesis(stageCtx, runID, task, symbol)
	if err != nil {
		return p.failed(record, err, log)
	}
	record.Thesis = thesis
	log.Infow("thesis generated", "direction", thesis.Direction, "confidence", thesis.Confidence)

	// Quant: market data snapshot plus analysis
	if expired(ctx) {
		return p.timedOut(record, trade.StageQuant, log)
	}
	snapshot, err := p.snapshotWithRetry(stageCtx, symbol, log)
	if err != nil {
		return p.failed(record, errors.NewStageError(string(trade.StageQuant), err), log)
	}
	analysis, err := p.quant.Analyze(stageCtx, runID, thesis, snapshot)
	if err != nil {
		return p.failed(record, err, log)
	}
	record.Analysis = analysis

	// Risk
	if expired(ctx) {
		return p.timedOut(record, trade.StageRisk, log)
	}
	risk, err := p.risk.Assess(stageCtx, runID, task, thesis, analysis)
	if err != nil {
		return p.failed(record, err, log)
	}
	record.Risk = risk
	log.Infow("risk assessed", "approved", risk.Approved, "position_size", risk.PositionSize.String())

	// Execution: runs even when risk withheld approval, constrained to a
	// no-trade decision so the audit trail stays complete
	if expired(ctx) {
		return p.timedOut(record, trade.StageExecution, log)
	}
	decision, err := p.execution.Decide(stageCtx, runID, thesis, risk)
	if err != nil {
		return p.failed(record, err, log)
	}
	record.Execution = decision

	if decision.Order != nil && !decision.NoTrade {
		confirmation, err := p.gateway.Submit(stageCtx, decision.Order)
		if err != nil {
			metrics.OrdersSubmitted.WithLabelValues("rejected").Inc()
			log.Warnw("order rejected", "error", err)
			record.Status = trade.StatusRejected
			record.FailureReason = err.Error()
			record.FinishedAt = time.Now().UTC()
			return record
		}
		metrics.OrdersSubmitted.WithLabelValues("accepted").Inc()
		decision.ConfirmationID = confirmation.ID
		log.Infow("order confirmed", "confirmation_id", confirmation.ID)
	}

	record.Status = trade.StatusCompleted
	record.FinishedAt = time.Now().UTC()
	return record
}

// snapshotWithRetry fetches market data, retrying transient failures the
// same bounded number of times stage agents retry the capability.
func (p *Pipeline) snapshotWithRetry(ctx context.Context, symbol string, log *logger.Logger) (*marketdata.Snapshot, error) {
	var lastErr error
	for attempt := 0; attempt <= p.retryLimit; attempt++ {
		if attempt > 0 {
			log.Warnw("retrying market data fetch", "attempt", attempt, "error", lastErr)
		}
		snapshot, err := p.market.Snapshot(ctx, symbol)
		if err == nil {
			return snapshot, nil
		}
		lastErr = err
		if !errors.Is(err, errors.ErrDataUnavailable) {
			break
		}
	}
	return nil, lastErr
}

func (p *Pipeline) failed(record *trade.TradeRecord, err error, log *logger.Logger) *trade.TradeRecord {
	stage := trade.StageDirector
	var stageErr *errors.StageError
	if errors.As(err, &stageErr) {
		stage = trade.Stage(stageErr.Stage)
	}

	record.Status = trade.FailedStatus(stage)
	record.FailedStage = stage
	record.FailureReason = err.Error()
	record.FinishedAt = time.Now().UTC()
	log.Errorw("pipeline failed", "stage", stage, "error", err)
	return record
}

func (p *Pipeline) timedOut(record *trade.TradeRecord, next trade.Stage, log *logger.Logger) *trade.TradeRecord {
	record.Status = trade.StatusTimedOut
	record.FailureReason = errors.Wrapf(errors.ErrRunTimedOut, "before stage %s", next).Error()
	record.FinishedAt = time.Now().UTC()
	log.Warnw("pipeline timed out", "next_stage", next)
	return record
}

func expired(ctx context.Context) bool {
	return ctx.Err() != nil
}
