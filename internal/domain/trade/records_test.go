package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

func chainedRecord(symbol string) *TradeRecord {
	thesis := &Thesis{ID: uuid.New(), Symbol: symbol, Direction: DirectionLong, Confidence: 0.8, CreatedAt: time.Now()}
	analysis := &Analysis{ID: uuid.New(), Symbol: symbol, ThesisID: thesis.ID, Signals: map[string]float64{"rsi": 61.2}, CreatedAt: time.Now()}
	risk := &RiskAssessment{ID: uuid.New(), Symbol: symbol, AnalysisID: analysis.ID, PositionSize: decimal.NewFromInt(100), Approved: true, CreatedAt: time.Now()}
	execution := &ExecutionDecision{ID: uuid.New(), Symbol: symbol, RiskID: risk.ID, CreatedAt: time.Now()}

	return &TradeRecord{
		ID:        uuid.New(),
		RunID:     uuid.New(),
		TaskID:    uuid.New(),
		Symbol:    symbol,
		Thesis:    thesis,
		Analysis:  analysis,
		Risk:      risk,
		Execution: execution,
		Status:    StatusCompleted,
		StartedAt: time.Now(),
	}
}

func TestTradeRecord_ValidateChain(t *testing.T) {
	rec := chainedRecord("NVDA")
	require.NoError(t, rec.ValidateChain())
	assert.True(t, rec.Complete())
}

func TestTradeRecord_ValidateChain_BrokenLink(t *testing.T) {
	rec := chainedRecord("NVDA")
	rec.Analysis.ThesisID = uuid.New()

	err := rec.ValidateChain()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references thesis")
}

func TestTradeRecord_ValidateChain_MissingUpstream(t *testing.T) {
	rec := chainedRecord("NVDA")
	rec.Thesis = nil

	err := rec.ValidateChain()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUpstreamMissing))
}

func TestTradeRecord_ValidateChain_SymbolMismatch(t *testing.T) {
	rec := chainedRecord("NVDA")
	rec.Risk.Symbol = "AAPL"

	err := rec.ValidateChain()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AAPL")
}

func TestTradeRecord_ValidateChain_PartialRecord(t *testing.T) {
	// A record that failed at the quant stage holds only a thesis. That is
	// a legal shape; the chain invariant binds only the links that exist.
	rec := chainedRecord("NVDA")
	rec.Analysis = nil
	rec.Risk = nil
	rec.Execution = nil
	rec.Status = FailedStatus(StageQuant)
	rec.FailedStage = StageQuant

	require.NoError(t, rec.ValidateChain())
	assert.False(t, rec.Complete())
}

func TestStatus_Failed(t *testing.T) {
	status := FailedStatus(StageQuant)
	assert.Equal(t, Status("failed:quant"), status)
	assert.True(t, status.IsFailed())
	assert.Equal(t, StageQuant, status.FailedStage())

	assert.False(t, StatusCompleted.IsFailed())
	assert.Equal(t, Stage(""), StatusCompleted.FailedStage())
}

func TestOrder_Validate(t *testing.T) {
	price := decimal.NewFromFloat(182.5)

	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{
			name:  "valid market order",
			order: Order{Symbol: "NVDA", Side: OrderSideBuy, Type: OrderTypeMarket, Quantity: decimal.NewFromInt(10)},
		},
		{
			name:  "valid limit order",
			order: Order{Symbol: "NVDA", Side: OrderSideSell, Type: OrderTypeLimit, Quantity: decimal.NewFromInt(5), LimitPrice: &price},
		},
		{
			name:    "missing symbol",
			order:   Order{Side: OrderSideBuy, Type: OrderTypeMarket, Quantity: decimal.NewFromInt(1)},
			wantErr: true,
		},
		{
			name:    "bad side",
			order:   Order{Symbol: "NVDA", Side: "hold", Type: OrderTypeMarket, Quantity: decimal.NewFromInt(1)},
			wantErr: true,
		},
		{
			name:    "limit without price",
			order:   Order{Symbol: "NVDA", Side: OrderSideBuy, Type: OrderTypeLimit, Quantity: decimal.NewFromInt(1)},
			wantErr: true,
		},
		{
			name:    "zero quantity",
			order:   Order{Symbol: "NVDA", Side: OrderSideBuy, Type: OrderTypeMarket, Quantity: decimal.Zero},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunResult_Validate(t *testing.T) {
	task := NewTask("momentum scan", decimal.NewFromInt(50000))
	result := NewRunResult(task, []string{"NVDA", "AAPL"})

	for _, symbol := range []string{"NVDA", "AAPL"} {
		rec := chainedRecord(symbol)
		rec.RunID = result.RunID
		rec.TaskID = task.ID
		result.Records[symbol] = rec
	}

	require.NoError(t, result.Validate())
	assert.Equal(t, 2, result.Completed())
	assert.Equal(t, []string{"AAPL", "NVDA"}, result.Symbols())
}

func TestRunResult_Validate_WrongRun(t *testing.T) {
	task := NewTask("momentum scan", decimal.NewFromInt(50000))
	result := NewRunResult(task, []string{"NVDA"})

	rec := chainedRecord("NVDA")
	result.Records["NVDA"] = rec // RunID left as a foreign run

	err := result.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to run")
}
