package types

import (
	"time"

	"github.com/google/uuid"
)

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Priority is an ordinal tag carried on orders. It is recorded but does not
// participate in matching order; time priority governs within a price level.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// Order is a resting or incoming unit of trading intent.
//
// ID and Timestamp are assigned exactly once, when the order is first
// accepted. An order that rests after partial matching keeps both; its
// arrival time for FIFO purposes is the time it was first submitted.
// Quantity is decremented in place as fills occur and never goes negative.
type Order struct {
	ID        uuid.UUID `json:"order_id"`
	TraderID  uuid.UUID `json:"trader_id"`
	Side      Side      `json:"side"`
	Price     float64   `json:"price"`
	Quantity  int64     `json:"quantity"`
	Priority  Priority  `json:"priority"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrder builds an order with a fresh ID and arrival timestamp.
// Price and quantity are assumed to have passed upstream validation.
func NewOrder(traderID uuid.UUID, side Side, price float64, quantity int64, priority Priority) *Order {
	return &Order{
		ID:        uuid.New(),
		TraderID:  traderID,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Priority:  priority,
		Timestamp: time.Now().UTC(),
	}
}
