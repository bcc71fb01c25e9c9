package marketdata

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

// syntheticCandles builds a deterministic uptrending series with a small
// oscillation so every indicator has signal to latch onto
func syntheticCandles(n int) []Candle {
	candles := make([]Candle, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		base := 100.0 + float64(i)*0.5
		wiggle := 2.0 * math.Sin(float64(i)/3.0)
		close := base + wiggle
		candles[i] = Candle{
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     close - 0.3,
			High:     close + 1.0,
			Low:      close - 1.0,
			Close:    close,
			Volume:   1000 + float64(i%7)*50,
		}
	}
	return candles
}

func TestComputeSignals(t *testing.T) {
	signals, err := ComputeSignals(syntheticCandles(200))
	require.NoError(t, err)

	for _, key := range []string{"rsi_14", "ema_21", "ema_50", "macd", "macd_signal", "macd_histogram", "atr_14", "roc_12"} {
		v, ok := signals[key]
		require.True(t, ok, "missing signal %s", key)
		assert.False(t, math.IsNaN(v), "signal %s is NaN", key)
	}

	// RSI is bounded; an uptrend should read above the midline
	assert.Greater(t, signals["rsi_14"], 50.0)
	assert.LessOrEqual(t, signals["rsi_14"], 100.0)

	// ATR on candles with ~2 unit range should be positive and modest
	assert.Greater(t, signals["atr_14"], 0.0)
	assert.Less(t, signals["atr_14"], 10.0)
}

func TestComputeSignals_TooFewCandles(t *testing.T) {
	_, err := ComputeSignals(syntheticCandles(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
