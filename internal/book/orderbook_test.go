package book_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/obsim/order-book-simulator/internal/book"
	"github.com/obsim/order-book-simulator/internal/types"
)

func newOrder(side types.Side, price float64, qty int64) *types.Order {
	return types.NewOrder(uuid.New(), side, price, qty, types.PriorityMedium)
}

func TestEmptyBook(t *testing.T) {
	b := book.NewOrderBook()

	if _, ok := b.BestBid(); ok {
		t.Error("BestBid() on empty book returned ok=true")
	}
	if _, ok := b.BestAsk(); ok {
		t.Error("BestAsk() on empty book returned ok=true")
	}
	if _, ok := b.BestBidVolume(); ok {
		t.Error("BestBidVolume() on empty book returned ok=true")
	}
	if _, ok := b.BestAskVolume(); ok {
		t.Error("BestAskVolume() on empty book returned ok=true")
	}
}

func TestBestBidHighestWins(t *testing.T) {
	b := book.NewOrderBook()

	b.AddOrder(newOrder(types.Buy, 100.0, 10))
	b.AddOrder(newOrder(types.Buy, 101.0, 5))
	b.AddOrder(newOrder(types.Buy, 99.5, 20))

	price, ok := b.BestBid()
	if !ok {
		t.Fatal("BestBid() returned ok=false with three bids resting")
	}
	if price != 101.0 {
		t.Errorf("BestBid() = %v, want 101.0", price)
	}
}

func TestBestAskLowestWins(t *testing.T) {
	b := book.NewOrderBook()

	b.AddOrder(newOrder(types.Sell, 102.0, 8))
	b.AddOrder(newOrder(types.Sell, 103.0, 12))
	b.AddOrder(newOrder(types.Sell, 102.5, 4))

	price, ok := b.BestAsk()
	if !ok {
		t.Fatal("BestAsk() returned ok=false with three asks resting")
	}
	if price != 102.0 {
		t.Errorf("BestAsk() = %v, want 102.0", price)
	}
}

func TestBestVolumeSumsLevel(t *testing.T) {
	b := book.NewOrderBook()

	b.AddOrder(newOrder(types.Sell, 101.0, 100))
	b.AddOrder(newOrder(types.Sell, 101.0, 50))
	b.AddOrder(newOrder(types.Sell, 102.0, 999))

	vol, ok := b.BestAskVolume()
	if !ok {
		t.Fatal("BestAskVolume() returned ok=false")
	}
	if vol != 150 {
		t.Errorf("BestAskVolume() = %d, want 150", vol)
	}
}

func TestFIFOWithinLevel(t *testing.T) {
	b := book.NewOrderBook()

	first := newOrder(types.Buy, 100.0, 10)
	second := newOrder(types.Buy, 100.0, 20)
	third := newOrder(types.Buy, 100.0, 30)
	b.AddOrder(first)
	b.AddOrder(second)
	b.AddOrder(third)

	orders := b.OrdersAtBest(types.Buy)
	if len(orders) != 3 {
		t.Fatalf("OrdersAtBest returned %d orders, want 3", len(orders))
	}
	if orders[0].ID != first.ID || orders[1].ID != second.ID || orders[2].ID != third.ID {
		t.Error("orders at level are not in arrival order")
	}
}

func TestRemoveOrderDeletesEmptyLevel(t *testing.T) {
	b := book.NewOrderBook()

	only := newOrder(types.Sell, 105.0, 10)
	b.AddOrder(only)
	b.AddOrder(newOrder(types.Sell, 106.0, 5))

	b.RemoveOrder(only)

	price, ok := b.BestAsk()
	if !ok || price != 106.0 {
		t.Errorf("BestAsk() after removal = %v ok=%v, want 106.0 true", price, ok)
	}
	if b.Levels(types.Sell) != 1 {
		t.Errorf("ask levels = %d, want 1 (empty level must be deleted)", b.Levels(types.Sell))
	}
}

func TestRemoveOrderIdempotent(t *testing.T) {
	b := book.NewOrderBook()

	resting := newOrder(types.Buy, 100.0, 10)
	other := newOrder(types.Buy, 100.0, 5)
	b.AddOrder(resting)
	b.AddOrder(other)

	b.RemoveOrder(resting)
	b.RemoveOrder(resting) // already gone: must not panic or touch anything else

	vol, ok := b.BestBidVolume()
	if !ok || vol != 5 {
		t.Errorf("BestBidVolume() = %d ok=%v, want 5 true", vol, ok)
	}
}

func TestRemoveNonexistentOrder(t *testing.T) {
	b := book.NewOrderBook()
	b.AddOrder(newOrder(types.Buy, 100.0, 10))

	// Never added at all, including a price level that does not exist.
	b.RemoveOrder(newOrder(types.Buy, 250.0, 1))
	b.RemoveOrder(newOrder(types.Sell, 100.0, 1))

	vol, ok := b.BestBidVolume()
	if !ok || vol != 10 {
		t.Errorf("book changed by removing absent orders: volume=%d ok=%v", vol, ok)
	}
}

func TestRemoveByIDNotIdentity(t *testing.T) {
	b := book.NewOrderBook()

	resting := newOrder(types.Sell, 101.0, 10)
	b.AddOrder(resting)

	// A copied value with the same ID must still locate the resting order.
	copied := *resting
	b.RemoveOrder(&copied)

	if _, ok := b.BestAsk(); ok {
		t.Error("order not removed when caller passed a copied reference")
	}
}

func TestSnapshotOrdering(t *testing.T) {
	b := book.NewOrderBook()

	b.AddOrder(newOrder(types.Buy, 99.0, 10))
	b.AddOrder(newOrder(types.Buy, 100.0, 20))
	b.AddOrder(newOrder(types.Buy, 98.0, 30))
	b.AddOrder(newOrder(types.Sell, 101.0, 5))
	b.AddOrder(newOrder(types.Sell, 103.0, 15))
	b.AddOrder(newOrder(types.Sell, 102.0, 25))

	snap := b.Snapshot()

	if len(snap.Bids) != 3 || len(snap.Asks) != 3 {
		t.Fatalf("snapshot levels = %d bids, %d asks, want 3/3", len(snap.Bids), len(snap.Asks))
	}
	if snap.Bids[0].Price != 100.0 || snap.Bids[1].Price != 99.0 || snap.Bids[2].Price != 98.0 {
		t.Errorf("bids not descending: %+v", snap.Bids)
	}
	if snap.Asks[0].Price != 101.0 || snap.Asks[1].Price != 102.0 || snap.Asks[2].Price != 103.0 {
		t.Errorf("asks not ascending: %+v", snap.Asks)
	}
}

func TestManyLevels(t *testing.T) {
	b := book.NewOrderBook()

	for i := 0; i < 500; i++ {
		b.AddOrder(newOrder(types.Buy, 100.0+float64(i)*0.01, 1))
	}

	top := 100.0 + float64(499)*0.01
	price, ok := b.BestBid()
	if !ok || price != top {
		t.Errorf("BestBid() = %v ok=%v, want %v true", price, ok, top)
	}
	if b.Levels(types.Buy) != 500 {
		t.Errorf("bid levels = %d, want 500", b.Levels(types.Buy))
	}

	// Drain from the top and check the tree keeps yielding the next best.
	for i := 499; i >= 0; i-- {
		want := 100.0 + float64(i)*0.01
		got, ok := b.BestBid()
		if !ok || got != want {
			t.Fatalf("BestBid() during drain = %v ok=%v, want %v", got, ok, want)
		}
		b.RemoveOrder(b.OrdersAtBest(types.Buy)[0])
	}
	if _, ok := b.BestBid(); ok {
		t.Error("book not empty after draining every level")
	}
}
