// Package gateway submits execution-stage orders to a trading venue.
package gateway

import (
	"context"
	"time"

	"github.com/bhardwajRahul/AutoHedge/internal/adapters/config"
	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

// Confirmation acknowledges an accepted order
type Confirmation struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// Gateway places orders. Rejections surface as errors.ErrExecutionRejected
// with the venue's reason attached.
type Gateway interface {
	Submit(ctx context.Context, order *trade.Order) (*Confirmation, error)
}

// New builds the gateway selected by configuration.
func New(cfg config.GatewayConfig) (Gateway, error) {
	switch cfg.Mode {
	case "paper":
		return NewPaperGateway(), nil
	case "none":
		return NewNopGateway(), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown gateway mode: %s", cfg.Mode)
	}
}
