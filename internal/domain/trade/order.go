package trade

import (
	"github.com/shopspring/decimal"

	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

// OrderSide is the direction of an order
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType selects the venue order semantics
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// Order is a concrete, submittable order produced by the execution stage
type Order struct {
	Symbol      string           `json:"symbol"`
	Side        OrderSide        `json:"side"`
	Type        OrderType        `json:"type"`
	Quantity    decimal.Decimal  `json:"quantity"`
	LimitPrice  *decimal.Decimal `json:"limit_price,omitempty"`
	TimeInForce string           `json:"time_in_force,omitempty"`
}

// Validate checks the order is submittable
func (o *Order) Validate() error {
	if o.Symbol == "" {
		return errors.NewValidationError("symbol", "must not be empty", o.Symbol)
	}
	switch o.Side {
	case OrderSideBuy, OrderSideSell:
	default:
		return errors.NewValidationError("side", "must be buy or sell", string(o.Side))
	}
	switch o.Type {
	case OrderTypeMarket:
	case OrderTypeLimit:
		if o.LimitPrice == nil || !o.LimitPrice.IsPositive() {
			return errors.NewValidationError("limit_price", "limit orders require a positive limit price", o.LimitPrice)
		}
	default:
		return errors.NewValidationError("type", "must be market or limit", string(o.Type))
	}
	if !o.Quantity.IsPositive() {
		return errors.NewValidationError("quantity", "must be positive", o.Quantity.String())
	}
	return nil
}
