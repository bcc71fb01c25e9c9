package marketdata

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

// minCandles is the smallest history that yields a stable MACD(12,26,9)
const minCandles = 40

// ComputeSignals derives the indicator set from chronological candles.
// Keys are stable; the quant agent's prompt names them explicitly.
func ComputeSignals(candles []Candle) (map[string]float64, error) {
	if len(candles) < minCandles {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "need at least %d candles, got %d", minCandles, len(candles))
	}

	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}

	signals := make(map[string]float64)

	if rsi, ok := lastValue(talib.Rsi(closes, 14)); ok {
		signals["rsi_14"] = round2(rsi)
	}

	if ema, ok := lastValue(talib.Ema(closes, 21)); ok {
		signals["ema_21"] = round2(ema)
	}
	if ema, ok := lastValue(talib.Ema(closes, 50)); ok {
		signals["ema_50"] = round2(ema)
	}

	macdLine, signalLine, histogram := talib.Macd(closes, 12, 26, 9)
	if macd, ok := lastValue(macdLine); ok {
		signals["macd"] = round2(macd)
	}
	if sig, ok := lastValue(signalLine); ok {
		signals["macd_signal"] = round2(sig)
	}
	if hist, ok := lastValue(histogram); ok {
		signals["macd_histogram"] = round2(hist)
	}

	if atr, ok := lastValue(talib.Atr(highs, lows, closes, 14)); ok {
		signals["atr_14"] = round2(atr)
	}

	if roc, ok := lastValue(talib.Roc(closes, 12)); ok {
		signals["roc_12"] = round2(roc)
	}

	return signals, nil
}

// lastValue returns the most recent value of an indicator series. Series
// shorter than the warm-up period come back empty or NaN-terminated.
func lastValue(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	v := values[len(values)-1]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
