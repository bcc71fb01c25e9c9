package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
	"github.com/bhardwajRahul/AutoHedge/pkg/logger"
)

// Ensure PaperGateway implements Gateway
var _ Gateway = (*PaperGateway)(nil)

// PaperGateway accepts every valid order in-process and mints a
// confirmation. Invalid orders are rejected the way a real venue would
// reject them, so the pipeline's rejection path stays exercised.
type PaperGateway struct {
	mu       sync.Mutex
	accepted []*trade.Order
}

// NewPaperGateway creates an in-process gateway.
func NewPaperGateway() *PaperGateway {
	return &PaperGateway{}
}

// Submit validates and books the order.
func (g *PaperGateway) Submit(ctx context.Context, order *trade.Order) (*Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "gateway submit")
	}
	if order == nil {
		return nil, errors.Wrap(errors.ErrExecutionRejected, "nil order")
	}
	if err := order.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrExecutionRejected, "order validation: %v", err)
	}

	g.mu.Lock()
	g.accepted = append(g.accepted, order)
	g.mu.Unlock()

	confirmation := &Confirmation{
		ID:         uuid.New().String(),
		Symbol:     order.Symbol,
		AcceptedAt: time.Now().UTC(),
	}

	logger.Get().Infow("paper order accepted",
		"confirmation_id", confirmation.ID,
		"symbol", order.Symbol,
		"side", order.Side,
		"type", order.Type,
		"quantity", order.Quantity.String(),
	)

	return confirmation, nil
}

// Accepted returns a copy of the booked orders, oldest first.
func (g *PaperGateway) Accepted() []*trade.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*trade.Order, len(g.accepted))
	copy(out, g.accepted)
	return out
}

// NopGateway records nothing and confirms nothing: decisions are kept in
// the trade record but never leave the process.
type NopGateway struct{}

// NewNopGateway creates a disabled gateway.
func NewNopGateway() *NopGateway {
	return &NopGateway{}
}

// Submit acknowledges without booking.
func (g *NopGateway) Submit(_ context.Context, order *trade.Order) (*Confirmation, error) {
	if order == nil {
		return nil, errors.Wrap(errors.ErrExecutionRejected, "nil order")
	}
	return &Confirmation{
		ID:         uuid.New().String(),
		Symbol:     order.Symbol,
		AcceptedAt: time.Now().UTC(),
	}, nil
}
