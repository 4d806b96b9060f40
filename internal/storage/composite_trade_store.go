package storage

import (
	"github.com/obsim/order-book-simulator/internal/types"
)

// CompositeTradeStore layers multiple TradeStore implementations.
// Writes go to ALL layers; GetRecent is served by the first layer that
// returns data. Example: CompositeTradeStore(memory, file) keeps reads fast
// and the trade log durable.
type CompositeTradeStore struct {
	stores []TradeStore
}

func NewCompositeTradeStore(stores ...TradeStore) *CompositeTradeStore {
	return &CompositeTradeStore{stores: stores}
}

func (c *CompositeTradeStore) Save(trade *types.Trade) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Save(trade); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeTradeStore) SaveBatch(trades []*types.Trade) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.SaveBatch(trades); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	for _, store := range c.stores {
		trades, err := store.GetRecent(limit)
		if err != nil {
			continue
		}
		if len(trades) > 0 {
			return trades, nil
		}
	}
	return []*types.Trade{}, nil
}

func (c *CompositeTradeStore) Close() error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
