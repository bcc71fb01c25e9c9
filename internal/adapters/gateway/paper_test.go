package gateway

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/AutoHedge/internal/adapters/config"
	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

func TestPaperGateway_Submit(t *testing.T) {
	g := NewPaperGateway()

	order := &trade.Order{
		Symbol:   "NVDA",
		Side:     trade.OrderSideBuy,
		Type:     trade.OrderTypeMarket,
		Quantity: decimal.NewFromInt(10),
	}

	conf, err := g.Submit(context.Background(), order)
	require.NoError(t, err)
	assert.NotEmpty(t, conf.ID)
	assert.Equal(t, "NVDA", conf.Symbol)
	assert.Len(t, g.Accepted(), 1)
}

func TestPaperGateway_Submit_Rejected(t *testing.T) {
	g := NewPaperGateway()

	order := &trade.Order{
		Symbol:   "NVDA",
		Side:     trade.OrderSideBuy,
		Type:     trade.OrderTypeMarket,
		Quantity: decimal.Zero, // Invalid
	}

	_, err := g.Submit(context.Background(), order)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExecutionRejected))
	assert.Empty(t, g.Accepted())
}

func TestPaperGateway_Submit_NilOrder(t *testing.T) {
	g := NewPaperGateway()

	_, err := g.Submit(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExecutionRejected))
}

func TestNew_Modes(t *testing.T) {
	g, err := New(config.GatewayConfig{Mode: "paper"})
	require.NoError(t, err)
	assert.IsType(t, &PaperGateway{}, g)

	g, err = New(config.GatewayConfig{Mode: "none"})
	require.NoError(t, err)
	assert.IsType(t, &NopGateway{}, g)

	_, err = New(config.GatewayConfig{Mode: "live"})
	require.Error(t, err)
}
