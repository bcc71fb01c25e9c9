package fund

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/internal/events"
	"github.com/bhardwajRahul/AutoHedge/internal/metrics"
	"github.com/bhardwajRahul/AutoHedge/internal/workspace"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
	"github.com/bhardwajRahul/AutoHedge/pkg/logger"
)

// Fund drives the pipeline across a portfolio of symbols and assembles
// the run result.
type Fund struct {
	pipeline  *Pipeline
	journal   trade.Repository
	workspace *workspace.Workspace
	publisher events.Publisher

	maxConcurrent int
	runTimeout    time.Duration
}

// Config bounds one fund's run behavior.
type Config struct {
	MaxConcurrentSymbols int
	RunTimeout           time.Duration
}

// New creates a fund. The publisher may be nil; events are then dropped.
func New(pipeline *Pipeline, journal trade.Repository, ws *workspace.Workspace, publisher events.Publisher, cfg Config) *Fund {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	maxConcurrent := cfg.MaxConcurrentSymbols
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Fund{
		pipeline:      pipeline,
		journal:       journal,
		workspace:     ws,
		publisher:     publisher,
		maxConcurrent: maxConcurrent,
		runTimeout:    cfg.RunTimeout,
	}
}

// Run executes one trading cycle: every requested symbol goes through the
// pipeline, bounded by the concurrency limit and the run deadline. The
// returned result holds exactly one record per symbol; individual symbol
// failures never fail the run.
func (f *Fund) Run(ctx context.Context, task trade.Task, symbols []string) (*trade.RunResult, error) {
	symbols = dedupeSymbols(symbols)
	if len(symbols) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "no symbols requested")
	}

	result := trade.NewRunResult(task, symbols)
	log := logger.Get().With("run_id", result.RunID)
	log.Infow("starting trading cycle",
		"objective", task.Objective,
		"allocation", humanize.CommafWithDigits(task.Allocation.InexactFloat64(), 2),
		"symbols", symbols,
	)

	metrics.RunsStarted.Inc()
	f.publisher.RunStarted(ctx, result.RunID, task.ID, symbols)

	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if f.runTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, f.runTimeout)
	}
	defer cancel()

	// Persistence must complete even when the run deadline has expired
	persistCtx := context.WithoutCancel(ctx)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		semaphore = make(chan struct{}, f.maxConcurrent)
	)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			// Acquire semaphore
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			record := f.pipeline.Run(runCtx, result.RunID, task, symbol)

			// Durable append immediately, not batched at run end
			if err := f.journal.Append(persistCtx, record); err != nil {
				metrics.RecordJournalAppend(err)
				log.Errorw("journal append failed", "symbol", symbol, "error", err)
			} else {
				metrics.RecordJournalAppend(nil)
			}

			mu.Lock()
			result.Records[symbol] = record
			mu.Unlock()

			metrics.SymbolOutcomes.WithLabelValues(string(record.Status)).Inc()
			f.publisher.SymbolCompleted(persistCtx, record)
		}(symbol)
	}

	wg.Wait()
	result.FinishedAt = time.Now().UTC()

	if f.workspace != nil {
		if path, err := f.workspace.WriteResult(result); err != nil {
			log.Errorw("write run result", "error", err)
		} else {
			log.Infow("run result written", "path", path)
		}
	}

	f.publisher.RunFinished(persistCtx, result)
	metrics.RunDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	log.Infow("trading cycle finished",
		"symbols", len(symbols),
		"completed", result.Completed(),
		"duration", result.FinishedAt.Sub(result.StartedAt).String(),
	)

	return result, nil
}

func dedupeSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
