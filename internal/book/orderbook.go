package book

import (
	"github.com/obsim/order-book-simulator/internal/types"
)

// OrderBook owns all resting orders for a single instrument, indexed by side
// and price with FIFO ordering within a price level. It holds no matching
// logic and is not internally synchronized: callers must serialize mutations
// and must not read concurrently with a mutation.
type OrderBook struct {
	bids *levelTree // best bid = max key
	asks *levelTree // best ask = min key
}

// Level is an aggregated view of one price level, used for depth snapshots.
type Level struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Orders   int     `json:"orders"`
}

// Snapshot is a full-book read: bids best-first (descending), asks
// best-first (ascending).
type Snapshot struct {
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids: newLevelTree(),
		asks: newLevelTree(),
	}
}

func (b *OrderBook) sideFor(side types.Side) *levelTree {
	if side == types.Buy {
		return b.bids
	}
	return b.asks
}

// AddOrder inserts the order at its price on the side it belongs to,
// appended behind any orders already resting there. The caller is
// responsible for the order being well formed.
func (b *OrderBook) AddOrder(o *types.Order) {
	b.sideFor(o.Side).upsert(o.Price).enqueue(o)
}

// RemoveOrder removes the order with the matching ID from its price level
// and deletes the level if it becomes empty. Removing an order that is not
// in the book is a no-op, so double removal is safe.
func (b *OrderBook) RemoveOrder(o *types.Order) {
	tree := b.sideFor(o.Side)
	lvl := tree.find(o.Price)
	if lvl == nil {
		return
	}
	if lvl.removeByID(o.ID) && lvl.empty() {
		tree.delete(o.Price)
	}
}

// BestBid returns the highest bid price. The second return is false when
// the bid side is empty.
func (b *OrderBook) BestBid() (float64, bool) {
	lvl := b.bids.max()
	if lvl == nil {
		return 0, false
	}
	return lvl.price, true
}

// BestAsk returns the lowest ask price. The second return is false when
// the ask side is empty.
func (b *OrderBook) BestAsk() (float64, bool) {
	lvl := b.asks.min()
	if lvl == nil {
		return 0, false
	}
	return lvl.price, true
}

// BestBidVolume is the total resting quantity at the best bid price.
func (b *OrderBook) BestBidVolume() (int64, bool) {
	lvl := b.bids.max()
	if lvl == nil {
		return 0, false
	}
	return lvl.volume(), true
}

// BestAskVolume is the total resting quantity at the best ask price.
func (b *OrderBook) BestAskVolume() (int64, bool) {
	lvl := b.asks.min()
	if lvl == nil {
		return 0, false
	}
	return lvl.volume(), true
}

// OrdersAtBest returns the live FIFO sequence at the best price of the given
// side, oldest first, or nil if that side is empty. The matching engine scans
// and mutates these orders in place; the slice must not be retained across
// book mutations.
func (b *OrderBook) OrdersAtBest(side types.Side) []*types.Order {
	var lvl *priceLevel
	if side == types.Buy {
		lvl = b.bids.max()
	} else {
		lvl = b.asks.min()
	}
	if lvl == nil {
		return nil
	}
	return lvl.orders
}

// Levels returns the number of distinct price levels on a side.
func (b *OrderBook) Levels(side types.Side) int {
	return b.sideFor(side).len()
}

// Snapshot aggregates every price level on both sides, best price first.
func (b *OrderBook) Snapshot() Snapshot {
	snap := Snapshot{Bids: []Level{}, Asks: []Level{}}
	b.bids.descend(func(lvl *priceLevel) bool {
		snap.Bids = append(snap.Bids, Level{Price: lvl.price, Quantity: lvl.volume(), Orders: len(lvl.orders)})
		return true
	})
	b.asks.ascend(func(lvl *priceLevel) bool {
		snap.Asks = append(snap.Asks, Level{Price: lvl.price, Quantity: lvl.volume(), Orders: len(lvl.orders)})
		return true
	})
	return snap
}
