package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/obsim/order-book-simulator/internal/types"
)

const tradesKey = "trades:recent"

// TradeStore implements storage.TradeStore on a Redis sorted set scored by
// execution time, trimmed to the most recent MaxTrades entries.
type TradeStore struct {
	client    *redis.Client
	maxTrades int
}

func NewTradeStore(cfg Config) (*TradeStore, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &TradeStore{
		client:    client,
		maxTrades: cfg.MaxTrades,
	}, nil
}

func (s *TradeStore) Save(trade *types.Trade) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := json.Marshal(trade)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, tradesKey, redis.Z{
		Score:  float64(trade.Timestamp.UnixNano()),
		Member: data,
	})
	pipe.ZRemRangeByRank(ctx, tradesKey, 0, int64(-s.maxTrades-1))

	_, err = pipe.Exec(ctx)
	return err
}

func (s *TradeStore) SaveBatch(trades []*types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipe := s.client.Pipeline()
	for _, trade := range trades {
		data, err := json.Marshal(trade)
		if err != nil {
			continue
		}
		pipe.ZAdd(ctx, tradesKey, redis.Z{
			Score:  float64(trade.Timestamp.UnixNano()),
			Member: data,
		})
	}
	pipe.ZRemRangeByRank(ctx, tradesKey, 0, int64(-s.maxTrades-1))

	_, err := pipe.Exec(ctx)
	return err
}

func (s *TradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	results, err := s.client.ZRevRange(ctx, tradesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	trades := make([]*types.Trade, 0, len(results))
	for _, data := range results {
		var trade types.Trade
		if err := json.Unmarshal([]byte(data), &trade); err != nil {
			continue
		}
		trades = append(trades, &trade)
	}
	return trades, nil
}

func (s *TradeStore) Close() error {
	return s.client.Close()
}
