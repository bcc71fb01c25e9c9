package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/AutoHedge/internal/adapters/config"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

func klineRow(i int, close float64) []interface{} {
	openTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)
	f := func(v float64) string { return fmt.Sprintf("%.2f", v) }
	return []interface{}{
		openTime.UnixMilli(),
		f(close - 0.3), f(close + 1), f(close - 1), f(close),
		f(1000),
		openTime.Add(time.Hour).UnixMilli() - 1,
		"0", 0, "0", "0", "0",
	}
}

func testProvider(serverURL string) *BinanceProvider {
	return NewBinanceProvider(config.MarketDataConfig{
		BaseURL:       serverURL,
		KlineInterval: "1h",
		KlineLimit:    200,
		Timeout:       5 * time.Second,
		ReqPerMinute:  1200,
	})
}

func TestBinanceProvider_Snapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "NVDAUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))

		rows := make([][]interface{}, 0, 200)
		for i := 0; i < 200; i++ {
			rows = append(rows, klineRow(i, 100+float64(i)*0.5))
		}
		_ = json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	snapshot, err := testProvider(server.URL).Snapshot(context.Background(), "NVDA/USDT")
	require.NoError(t, err)

	assert.Equal(t, "NVDA/USDT", snapshot.Symbol)
	assert.InDelta(t, 199.5, snapshot.Price, 0.01)
	assert.NotEmpty(t, snapshot.Signals)
	assert.Contains(t, snapshot.Signals, "rsi_14")
}

func TestBinanceProvider_Snapshot_UnknownSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer server.Close()

	_, err := testProvider(server.URL).Snapshot(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataUnavailable))
	assert.Contains(t, err.Error(), "Invalid symbol")
}

func TestBinanceProvider_Snapshot_FeedDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Shut down before use

	_, err := testProvider(server.URL).Snapshot(context.Background(), "NVDA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataUnavailable))
}

func TestBinanceProvider_Snapshot_ShortHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows := [][]interface{}{klineRow(0, 100), klineRow(1, 101)}
		_ = json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	_, err := testProvider(server.URL).Snapshot(context.Background(), "NVDA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDataUnavailable))
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", normalizeSymbol("BTC/USDT"))
	assert.Equal(t, "NVDA", normalizeSymbol("nvda"))
}
