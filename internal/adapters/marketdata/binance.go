package marketdata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bhardwajRahul/AutoHedge/internal/adapters/config"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

const defaultHTTPTimeout = 15 * time.Second

// Ensure BinanceProvider implements Provider
var _ Provider = (*BinanceProvider)(nil)

// BinanceProvider serves snapshots from Binance spot kline data. Only
// public endpoints are used so no credentials are required.
type BinanceProvider struct {
	baseURL    string
	interval   string
	limit      int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewBinanceProvider creates a kline-backed snapshot provider.
func NewBinanceProvider(cfg config.MarketDataConfig) *BinanceProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}

	// https://binance-docs.github.io/apidocs/spot/en/#limits
	rpm := cfg.ReqPerMinute
	if rpm <= 0 {
		rpm = 1200
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}

	return &BinanceProvider{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		interval:   cfg.KlineInterval,
		limit:      cfg.KlineLimit,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
	}
}

// Snapshot fetches recent klines for the symbol and computes indicators.
func (p *BinanceProvider) Snapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(errors.ErrDataUnavailable, err.Error())
	}

	candles, err := p.klines(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, errors.Wrapf(errors.ErrDataUnavailable, "no klines for symbol %s", symbol)
	}

	signals, err := ComputeSignals(candles)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDataUnavailable, "compute signals for %s: %v", symbol, err)
	}

	return &Snapshot{
		Symbol:    symbol,
		Price:     candles[len(candles)-1].Close,
		Interval:  p.interval,
		Signals:   signals,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (p *BinanceProvider) klines(ctx context.Context, symbol string) ([]Candle, error) {
	params := url.Values{
		"symbol":   []string{normalizeSymbol(symbol)},
		"interval": []string{p.interval},
		"limit":    []string{strconv.Itoa(p.limit)},
	}

	reqURL := p.baseURL + "/api/v3/klines?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create klines request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDataUnavailable, "fetch klines for %s: %v", symbol, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read klines response")
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Msg != "" {
			return nil, errors.Wrapf(errors.ErrDataUnavailable, "klines for %s (%d): %s", symbol, apiErr.Code, apiErr.Msg)
		}
		return nil, errors.Wrapf(errors.ErrDataUnavailable, "klines for %s: HTTP %d", symbol, resp.StatusCode)
	}

	// Klines come as arrays of mixed types:
	// [openTime, open, high, low, close, volume, closeTime, ...]
	var raw [][]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrap(err, "unmarshal klines")
	}

	candles := make([]Candle, 0, len(raw))
	for _, row := range raw {
		if len(row) < 6 {
			continue
		}

		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			continue
		}

		candle := Candle{OpenTime: time.UnixMilli(openTime)}
		fields := []*float64{&candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume}
		ok := true
		for i, dst := range fields {
			var s string
			if err := json.Unmarshal(row[i+1], &s); err != nil {
				ok = false
				break
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				ok = false
				break
			}
			*dst = v
		}
		if ok {
			candles = append(candles, candle)
		}
	}

	return candles, nil
}

// normalizeSymbol strips the slash form (BTC/USDT -> BTCUSDT)
func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}
