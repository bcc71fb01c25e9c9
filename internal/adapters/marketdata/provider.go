// Package marketdata fetches price history and computes the indicator
// snapshot the quant stage reasons over.
package marketdata

import (
	"context"
	"time"
)

// Candle is one OHLCV bar in chronological order
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Snapshot is a point-in-time view of one symbol: last price plus computed
// indicator values keyed by name (rsi_14, ema_21, macd, atr_14, ...).
type Snapshot struct {
	Symbol    string             `json:"symbol"`
	Price     float64            `json:"price"`
	Interval  string             `json:"interval"`
	Signals   map[string]float64 `json:"signals"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Provider serves market data snapshots. A failed fetch or an unknown
// symbol surfaces as errors.ErrDataUnavailable.
type Provider interface {
	Snapshot(ctx context.Context, symbol string) (*Snapshot, error)
}
