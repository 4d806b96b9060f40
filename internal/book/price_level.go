package book

import (
	"github.com/google/uuid"

	"github.com/obsim/order-book-simulator/internal/types"
)

// priceLevel holds the resting orders at one exact price on one side,
// strictly ordered by arrival: index 0 is the oldest.
type priceLevel struct {
	price  float64
	orders []*types.Order
}

func (l *priceLevel) enqueue(o *types.Order) {
	l.orders = append(l.orders, o)
}

// removeByID unlinks the order with the given id, preserving the relative
// order of the remaining entries. Returns false if the id is not present.
func (l *priceLevel) removeByID(id uuid.UUID) bool {
	for i, o := range l.orders {
		if o.ID == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			return true
		}
	}
	return false
}

func (l *priceLevel) empty() bool {
	return len(l.orders) == 0
}

// volume is the total resting quantity at this level.
func (l *priceLevel) volume() int64 {
	var total int64
	for _, o := range l.orders {
		total += o.Quantity
	}
	return total
}
