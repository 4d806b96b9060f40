package memory

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/obsim/order-book-simulator/internal/types"
)

// OrderStore keeps orders in a map with FIFO eviction. When maxSize is
// reached the oldest orders are dropped; lower layers keep the full history.
// Thread-safe via RWMutex.
type OrderStore struct {
	orders   map[uuid.UUID]*types.Order
	orderIDs []uuid.UUID
	maxSize  int
	mutex    sync.RWMutex
}

func NewOrderStore(maxSize int) *OrderStore {
	return &OrderStore{
		orders:   make(map[uuid.UUID]*types.Order),
		orderIDs: make([]uuid.UUID, 0, maxSize),
		maxSize:  maxSize,
	}
}

func (s *OrderStore) Save(order *types.Order) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.orders[order.ID]; !exists {
		s.orderIDs = append(s.orderIDs, order.ID)
	}
	s.orders[order.ID] = order

	for s.maxSize > 0 && len(s.orderIDs) > s.maxSize {
		oldest := s.orderIDs[0]
		s.orderIDs = s.orderIDs[1:]
		delete(s.orders, oldest)
	}
	return nil
}

func (s *OrderStore) Get(orderID uuid.UUID) (*types.Order, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	order, exists := s.orders[orderID]
	if !exists {
		return nil, fmt.Errorf("order %s not found", orderID)
	}
	return order, nil
}

func (s *OrderStore) Remove(orderID uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.orders[orderID]; !exists {
		return nil
	}
	delete(s.orders, orderID)
	for i, id := range s.orderIDs {
		if id == orderID {
			s.orderIDs = append(s.orderIDs[:i], s.orderIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *OrderStore) Update(order *types.Order) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.orders[order.ID]; !exists {
		return fmt.Errorf("order %s not found", order.ID)
	}
	s.orders[order.ID] = order
	return nil
}

func (s *OrderStore) GetAll() []*types.Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	orders := make([]*types.Order, 0, len(s.orders))
	for _, id := range s.orderIDs {
		if order, ok := s.orders[id]; ok {
			orders = append(orders, order)
		}
	}
	return orders
}

func (s *OrderStore) GetByTrader(traderID uuid.UUID) []*types.Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var orders []*types.Order
	for _, id := range s.orderIDs {
		if order, ok := s.orders[id]; ok && order.TraderID == traderID {
			orders = append(orders, order)
		}
	}
	return orders
}

func (s *OrderStore) GetBySide(side types.Side) []*types.Order {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var orders []*types.Order
	for _, id := range s.orderIDs {
		if order, ok := s.orders[id]; ok && order.Side == side {
			orders = append(orders, order)
		}
	}
	return orders
}

func (s *OrderStore) Close() error {
	return nil
}
