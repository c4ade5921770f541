package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

// String returns the lowercase side name used on the wire.
func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// OrderStatus is the lifecycle state of a tracked order.
type OrderStatus string

const (
	OrderStatusOpen   OrderStatus = "open"
	OrderStatusClosed OrderStatus = "closed"
)

// OrderRequest is the specification submitted to an execution venue.
type OrderRequest struct {
	Pair       Pair
	Side       Side
	Size       decimal.Decimal
	Price      decimal.Decimal
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
}

// Order is a persisted record of a submitted order and its tracked position.
type Order struct {
	ID          string          `json:"id"`
	Pair        string          `json:"pair"`
	Side        string          `json:"side"`
	Size        decimal.Decimal `json:"size"`
	EntryPrice  decimal.Decimal `json:"entry_price"`
	StopLoss    decimal.Decimal `json:"stop_loss"`
	TakeProfit  decimal.Decimal `json:"take_profit"`
	OpenedAt    time.Time       `json:"opened_at"`
	Status      OrderStatus     `json:"status"`
	ClosedAt    *time.Time      `json:"closed_at,omitempty"`
	CloseReason string          `json:"close_reason,omitempty"`
}

// NewOrder builds an open order record from a submitted request.
func NewOrder(id string, req OrderRequest, openedAt time.Time) (*Order, error) {
	if id == "" {
		return nil, errors.New("order id is required")
	}
	if req.Size.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("order size must be greater than zero")
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("entry price must be greater than zero")
	}

	return &Order{
		ID:         id,
		Pair:       req.Pair.String(),
		Side:       req.Side.String(),
		Size:       req.Size,
		EntryPrice: req.Price,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		OpenedAt:   openedAt,
		Status:     OrderStatusOpen,
	}, nil
}

// Close marks the order closed with the given reason. Closing an already
// closed order is a no-op.
func (o *Order) Close(at time.Time, reason string) {
	if o.Status == OrderStatusClosed {
		return
	}
	o.Status = OrderStatusClosed
	o.ClosedAt = &at
	o.CloseReason = reason
}
