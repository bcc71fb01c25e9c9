package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func fullRecord(runID uuid.UUID, symbol string) *trade.TradeRecord {
	thesis := &trade.Thesis{ID: uuid.New(), Symbol: symbol, Direction: trade.DirectionLong, Confidence: 0.8, Rationale: "up", CreatedAt: time.Now().UTC()}
	analysis := &trade.Analysis{ID: uuid.New(), Symbol: symbol, ThesisID: thesis.ID, Signals: map[string]float64{"rsi_14": 61}, Summary: "ok", CreatedAt: time.Now().UTC()}
	risk := &trade.RiskAssessment{ID: uuid.New(), Symbol: symbol, AnalysisID: analysis.ID, PositionSize: decimal.NewFromInt(50000), Approved: true, Narrative: "sized", CreatedAt: time.Now().UTC()}
	execution := &trade.ExecutionDecision{
		ID: uuid.New(), Symbol: symbol, RiskID: risk.ID,
		Order: &trade.Order{Symbol: symbol, Side: trade.OrderSideBuy, Type: trade.OrderTypeMarket, Quantity: decimal.NewFromInt(250)},
		Narrative: "market entry", ConfirmationID: uuid.NewString(), CreatedAt: time.Now().UTC(),
	}

	return &trade.TradeRecord{
		ID: uuid.New(), RunID: runID, TaskID: uuid.New(), Symbol: symbol,
		Thesis: thesis, Analysis: analysis, Risk: risk, Execution: execution,
		Status:    trade.StatusCompleted,
		StartedAt: time.Now().UTC(), FinishedAt: time.Now().UTC(),
	}
}

func TestJournal_AppendAndGetRun(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	runID := uuid.New()
	original := fullRecord(runID, "NVDA")
	require.NoError(t, j.Append(ctx, original))

	records, err := j.GetRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records["NVDA"]
	require.NotNil(t, got)
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, trade.StatusCompleted, got.Status)
	require.NotNil(t, got.Thesis)
	assert.Equal(t, original.Thesis.ID, got.Thesis.ID)
	require.NotNil(t, got.Execution)
	require.NotNil(t, got.Execution.Order)
	assert.True(t, got.Execution.Order.Quantity.Equal(decimal.NewFromInt(250)))
	assert.NoError(t, got.ValidateChain())
}

func TestJournal_PartialRecord(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	runID := uuid.New()
	record := fullRecord(runID, "XYZ")
	record.Analysis = nil
	record.Risk = nil
	record.Execution = nil
	record.Status = trade.FailedStatus(trade.StageQuant)
	record.FailedStage = trade.StageQuant
	record.FailureReason = "market data unavailable"

	require.NoError(t, j.Append(ctx, record))

	records, err := j.GetRun(ctx, runID)
	require.NoError(t, err)

	got := records["XYZ"]
	require.NotNil(t, got)
	assert.Equal(t, trade.FailedStatus(trade.StageQuant), got.Status)
	assert.NotNil(t, got.Thesis)
	assert.Nil(t, got.Analysis)
	assert.Equal(t, "market data unavailable", got.FailureReason)
}

func TestJournal_Append_ReplacesOnReplay(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	runID := uuid.New()
	first := fullRecord(runID, "NVDA")
	first.Status = trade.StatusTimedOut
	require.NoError(t, j.Append(ctx, first))

	second := fullRecord(runID, "NVDA")
	require.NoError(t, j.Append(ctx, second))

	records, err := j.GetRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, records, 1) // one entry per (run, symbol)
	assert.Equal(t, trade.StatusCompleted, records["NVDA"].Status)
	assert.Equal(t, second.ID, records["NVDA"].ID)
}

func TestJournal_GetRun_Isolation(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	runA := uuid.New()
	runB := uuid.New()
	require.NoError(t, j.Append(ctx, fullRecord(runA, "NVDA")))
	require.NoError(t, j.Append(ctx, fullRecord(runA, "AAPL")))
	require.NoError(t, j.Append(ctx, fullRecord(runB, "NVDA")))

	records, err := j.GetRun(ctx, runA)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = j.GetRun(ctx, runB)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestJournal_GetRun_Empty(t *testing.T) {
	j := openTestJournal(t)

	records, err := j.GetRun(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, records)
}
