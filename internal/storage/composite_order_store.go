package storage

import (
	"github.com/google/uuid"

	"github.com/obsim/order-book-simulator/internal/types"
)

// CompositeOrderStore layers multiple OrderStore implementations.
// Writes go to ALL layers, reads come from the FIRST layer that succeeds.
// Example: CompositeOrderStore(memory, redis, postgres) writes through all
// three and serves reads from memory, falling back to redis, then postgres.
type CompositeOrderStore struct {
	stores []OrderStore
}

func NewCompositeOrderStore(stores ...OrderStore) *CompositeOrderStore {
	return &CompositeOrderStore{stores: stores}
}

func (c *CompositeOrderStore) Save(order *types.Order) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Save(order); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeOrderStore) Get(orderID uuid.UUID) (*types.Order, error) {
	var lastErr error
	for _, store := range c.stores {
		order, err := store.Get(orderID)
		if err == nil && order != nil {
			return order, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *CompositeOrderStore) Remove(orderID uuid.UUID) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Remove(orderID); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeOrderStore) Update(order *types.Order) error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Update(order); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (c *CompositeOrderStore) GetAll() []*types.Order {
	for _, store := range c.stores {
		if orders := store.GetAll(); len(orders) > 0 {
			return orders
		}
	}
	return []*types.Order{}
}

func (c *CompositeOrderStore) GetByTrader(traderID uuid.UUID) []*types.Order {
	for _, store := range c.stores {
		if orders := store.GetByTrader(traderID); len(orders) > 0 {
			return orders
		}
	}
	return []*types.Order{}
}

func (c *CompositeOrderStore) GetBySide(side types.Side) []*types.Order {
	for _, store := range c.stores {
		if orders := store.GetBySide(side); len(orders) > 0 {
			return orders
		}
	}
	return []*types.Order{}
}

func (c *CompositeOrderStore) Close() error {
	var lastErr error
	for _, store := range c.stores {
		if err := store.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
