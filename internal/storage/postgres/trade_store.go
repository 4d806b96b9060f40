package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obsim/order-book-simulator/internal/types"
)

// TradeStore implements storage.TradeStore on PostgreSQL.
type TradeStore struct {
	pool *pgxpool.Pool
}

func NewTradeStore(cfg Config) (*TradeStore, error) {
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

	return &TradeStore{pool: pool}, nil
}

const insertTradeQuery = `
	INSERT INTO trades (trade_id, maker_order_id, maker_trader_id, taker_order_id, taker_trader_id, price, quantity, taker_side, executed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (trade_id) DO NOTHING
`

func (s *TradeStore) Save(trade *types.Trade) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, insertTradeQuery,
		trade.ID, trade.MakerOrderID, trade.MakerTraderID,
		trade.TakerOrderID, trade.TakerTraderID,
		trade.Price, trade.Quantity, trade.TakerSide, trade.Timestamp,
	)
	return err
}

func (s *TradeStore) SaveBatch(trades []*types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	for _, trade := range trades {
		batch.Queue(insertTradeQuery,
			trade.ID, trade.MakerOrderID, trade.MakerTraderID,
			trade.TakerOrderID, trade.TakerTraderID,
			trade.Price, trade.Quantity, trade.TakerSide, trade.Timestamp,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(trades); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert failed at index %d: %w", i, err)
		}
	}
	return nil
}

func (s *TradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT trade_id, maker_order_id, maker_trader_id, taker_order_id, taker_trader_id, price, quantity, taker_side, executed_at
		FROM trades
		ORDER BY executed_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*types.Trade
	for rows.Next() {
		var trade types.Trade
		err := rows.Scan(
			&trade.ID, &trade.MakerOrderID, &trade.MakerTraderID,
			&trade.TakerOrderID, &trade.TakerTraderID,
			&trade.Price, &trade.Quantity, &trade.TakerSide, &trade.Timestamp,
		)
		if err != nil {
			continue
		}
		trades = append(trades, &trade)
	}
	return trades, nil
}

func (s *TradeStore) Close() error {
	s.pool.Close()
	return nil
}
