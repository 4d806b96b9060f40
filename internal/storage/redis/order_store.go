package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/obsim/order-book-simulator/internal/types"
)

const (
	orderKeyPrefix    = "order:"
	traderOrdersKey   = "trader_orders:"
	sideOrdersKey     = "side_orders:"
	ordersTimelineKey = "orders:timeline"
)

// OrderStore implements storage.OrderStore on Redis. Orders are stored as
// JSON strings with a TTL, indexed by trader and side sets, and held in a
// timeline sorted set for FIFO eviction past MaxOrders.
type OrderStore struct {
	client    *redis.Client
	orderTTL  time.Duration
	maxOrders int
}

func NewOrderStore(cfg Config) (*OrderStore, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &OrderStore{
		client:    client,
		orderTTL:  cfg.OrderTTL,
		maxOrders: cfg.MaxOrders,
	}, nil
}

func (s *OrderStore) Save(order *types.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()

	pipe.Set(ctx, orderKeyPrefix+order.ID.String(), data, s.orderTTL)

	traderKey := traderOrdersKey + order.TraderID.String()
	pipe.SAdd(ctx, traderKey, order.ID.String())
	pipe.Expire(ctx, traderKey, s.orderTTL)

	sideKey := sideOrdersKey + string(order.Side)
	pipe.SAdd(ctx, sideKey, order.ID.String())
	pipe.Expire(ctx, sideKey, s.orderTTL)

	pipe.ZAdd(ctx, ordersTimelineKey, redis.Z{
		Score:  float64(order.Timestamp.UnixNano()),
		Member: order.ID.String(),
	})
	pipe.ZRemRangeByRank(ctx, ordersTimelineKey, 0, int64(-s.maxOrders-1))

	_, err = pipe.Exec(ctx)
	return err
}

func (s *OrderStore) Get(orderID uuid.UUID) (*types.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := s.client.Get(ctx, orderKeyPrefix+orderID.String()).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("order %s not found", orderID)
	}
	if err != nil {
		return nil, err
	}

	var order types.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderStore) Remove(orderID uuid.UUID) error {
	order, err := s.Get(orderID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	pipe := s.client.Pipeline()
	pipe.Del(ctx, orderKeyPrefix+orderID.String())
	pipe.SRem(ctx, traderOrdersKey+order.TraderID.String(), orderID.String())
	pipe.SRem(ctx, sideOrdersKey+string(order.Side), orderID.String())
	pipe.ZRem(ctx, ordersTimelineKey, orderID.String())

	_, err = pipe.Exec(ctx)
	return err
}

// Update is an upsert in Redis.
func (s *OrderStore) Update(order *types.Order) error {
	return s.Save(order)
}

func (s *OrderStore) GetAll() []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Timeline holds every live order ID in arrival order.
	orderIDs, err := s.client.ZRange(ctx, ordersTimelineKey, 0, -1).Result()
	if err != nil {
		return []*types.Order{}
	}
	return s.getOrdersByIDs(ctx, orderIDs)
}

func (s *OrderStore) GetByTrader(traderID uuid.UUID) []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	orderIDs, err := s.client.SMembers(ctx, traderOrdersKey+traderID.String()).Result()
	if err != nil {
		return []*types.Order{}
	}
	return s.getOrdersByIDs(ctx, orderIDs)
}

func (s *OrderStore) GetBySide(side types.Side) []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	orderIDs, err := s.client.SMembers(ctx, sideOrdersKey+string(side)).Result()
	if err != nil {
		return []*types.Order{}
	}
	return s.getOrdersByIDs(ctx, orderIDs)
}

func (s *OrderStore) Close() error {
	return s.client.Close()
}

func (s *OrderStore) getOrdersByIDs(ctx context.Context, orderIDs []string) []*types.Order {
	if len(orderIDs) == 0 {
		return []*types.Order{}
	}

	keys := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		keys[i] = orderKeyPrefix + id
	}

	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return []*types.Order{}
	}

	var orders []*types.Order
	for _, result := range results {
		data, ok := result.(string)
		if !ok {
			continue
		}
		var order types.Order
		if err := json.Unmarshal([]byte(data), &order); err != nil {
			continue
		}
		orders = append(orders, &order)
	}
	return orders
}
