package storage_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/obsim/order-book-simulator/internal/storage"
	"github.com/obsim/order-book-simulator/internal/storage/memory"
	"github.com/obsim/order-book-simulator/internal/types"
)

func TestCompositeOrderStoreWritesThroughAllLayers(t *testing.T) {
	l1 := memory.NewOrderStore(10)
	l2 := memory.NewOrderStore(10)
	composite := storage.NewCompositeOrderStore(l1, l2)

	order := types.NewOrder(uuid.New(), types.Buy, 100, 5, types.PriorityMedium)
	if err := composite.Save(order); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for i, layer := range []*memory.OrderStore{l1, l2} {
		if _, err := layer.Get(order.ID); err != nil {
			t.Fatalf("layer %d missing order: %v", i, err)
		}
	}
}

func TestCompositeOrderStoreReadsFallThrough(t *testing.T) {
	l1 := memory.NewOrderStore(10)
	l2 := memory.NewOrderStore(10)
	composite := storage.NewCompositeOrderStore(l1, l2)

	// Present only in the second layer, as after an L1 eviction.
	order := types.NewOrder(uuid.New(), types.Sell, 100, 5, types.PriorityMedium)
	if err := l2.Save(order); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := composite.Get(order.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("got order %s, want %s", got.ID, order.ID)
	}
}

func TestCompositeTradeStoreReadsFirstLayerWithData(t *testing.T) {
	l1 := memory.NewTradeStore(10)
	l2 := memory.NewTradeStore(10)
	composite := storage.NewCompositeTradeStore(l1, l2)

	maker := types.NewOrder(uuid.New(), types.Sell, 100, 10, types.PriorityMedium)
	taker := types.NewOrder(uuid.New(), types.Buy, 100, 10, types.PriorityMedium)
	if err := composite.SaveBatch([]*types.Trade{types.NewTrade(maker, taker, 4)}); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	recent, err := composite.GetRecent(5)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("got %d trades, want 1", len(recent))
	}
}
