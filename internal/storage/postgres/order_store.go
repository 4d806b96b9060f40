package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obsim/order-book-simulator/internal/types"
)

// OrderStore implements storage.OrderStore on PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(cfg Config) (*OrderStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &OrderStore{pool: pool}, nil
}

func (s *OrderStore) Save(order *types.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO orders (order_id, trader_id, side, price, quantity, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		order.ID, order.TraderID, order.Side, order.Price,
		order.Quantity, order.Priority, order.Timestamp, time.Now(),
	)
	return err
}

func (s *OrderStore) Get(orderID uuid.UUID) (*types.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		SELECT order_id, trader_id, side, price, quantity, priority, created_at
		FROM orders
		WHERE order_id = $1
	`

	var order types.Order
	err := s.pool.QueryRow(ctx, query, orderID).Scan(
		&order.ID, &order.TraderID, &order.Side, &order.Price,
		&order.Quantity, &order.Priority, &order.Timestamp,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %s not found", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderStore) Remove(orderID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	return err
}

func (s *OrderStore) Update(order *types.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		UPDATE orders
		SET quantity = $2, updated_at = $3
		WHERE order_id = $1
	`

	result, err := s.pool.Exec(ctx, query, order.ID, order.Quantity, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", order.ID)
	}
	return nil
}

func (s *OrderStore) GetAll() []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
		SELECT order_id, trader_id, side, price, quantity, priority, created_at
		FROM orders
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return []*types.Order{}
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (s *OrderStore) GetByTrader(traderID uuid.UUID) []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
		SELECT order_id, trader_id, side, price, quantity, priority, created_at
		FROM orders
		WHERE trader_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, traderID)
	if err != nil {
		return []*types.Order{}
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (s *OrderStore) GetBySide(side types.Side) []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
		SELECT order_id, trader_id, side, price, quantity, priority, created_at
		FROM orders
		WHERE side = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, side)
	if err != nil {
		return []*types.Order{}
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (s *OrderStore) Close() error {
	s.pool.Close()
	return nil
}

func scanOrders(rows pgx.Rows) []*types.Order {
	var orders []*types.Order
	for rows.Next() {
		var order types.Order
		err := rows.Scan(
			&order.ID, &order.TraderID, &order.Side, &order.Price,
			&order.Quantity, &order.Priority, &order.Timestamp,
		)
		if err != nil {
			continue
		}
		orders = append(orders, &order)
	}
	return orders
}
