package matching

import (
	"github.com/google/uuid"

	"github.com/obsim/order-book-simulator/internal/book"
	"github.com/obsim/order-book-simulator/internal/types"
)

// Engine crosses incoming orders against the resting side of an order book
// using price-time priority. It assumes inputs already passed validation
// (positive price and quantity, known side) and performs no synchronization:
// exactly one ProcessOrder call may be in flight per book instance.
type Engine struct {
	book *book.OrderBook
}

func NewEngine(b *book.OrderBook) *Engine {
	return &Engine{book: b}
}

// Book exposes the underlying order book for read collaborators. Reads must
// not run concurrently with ProcessOrder.
func (e *Engine) Book() *book.OrderBook {
	return e.book
}

// ProcessOrder matches the incoming order against the opposite side while it
// still crosses, then rests any unfilled remainder. The returned trades are
// in execution order; a non-crossing order returns an empty slice and rests
// in full. The incoming order keeps its original ID and timestamp when it
// rests, so its FIFO position reflects first submission.
func (e *Engine) ProcessOrder(incoming *types.Order) []*types.Trade {
	trades := []*types.Trade{}

	for incoming.Quantity > 0 {
		// The best price can change after every fill (a level may empty
		// out), so it is re-read each iteration rather than cached.
		if incoming.Side == types.Buy {
			bestAsk, ok := e.book.BestAsk()
			if !ok || incoming.Price < bestAsk {
				break
			}
		} else {
			bestBid, ok := e.book.BestBid()
			if !ok || incoming.Price > bestBid {
				break
			}
		}

		maker := e.eligibleMaker(incoming.Side.Opposite(), incoming.TraderID)
		if maker == nil {
			// The best level holds only the taker's own orders. Matching
			// halts here without descending to worse crossing levels.
			break
		}

		fill := incoming.Quantity
		if maker.Quantity < fill {
			fill = maker.Quantity
		}

		trades = append(trades, types.NewTrade(maker, incoming, fill))

		incoming.Quantity -= fill
		maker.Quantity -= fill
		if maker.Quantity == 0 {
			e.book.RemoveOrder(maker)
		}
	}

	if incoming.Quantity > 0 {
		e.book.AddOrder(incoming)
	}

	return trades
}

// eligibleMaker scans the FIFO at the best price on the given side, oldest
// first, for the first order belonging to a different trader. Skipped
// same-trader orders keep their queue position.
func (e *Engine) eligibleMaker(side types.Side, taker uuid.UUID) *types.Order {
	for _, o := range e.book.OrdersAtBest(side) {
		if o.TraderID != taker {
			return o
		}
	}
	return nil
}
