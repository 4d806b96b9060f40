package memory

import (
	"sync"

	"github.com/obsim/order-book-simulator/internal/types"
)

// TradeStore keeps the N most recent trades in a bounded in-memory buffer.
type TradeStore struct {
	trades  []*types.Trade
	maxSize int
	mutex   sync.RWMutex
}

func NewTradeStore(maxSize int) *TradeStore {
	return &TradeStore{
		trades:  make([]*types.Trade, 0, maxSize),
		maxSize: maxSize,
	}
}

func (s *TradeStore) Save(trade *types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trades = append(s.trades, trade)
	s.trim()
	return nil
}

func (s *TradeStore) SaveBatch(trades []*types.Trade) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.trades = append(s.trades, trades...)
	s.trim()
	return nil
}

// trim drops the oldest entries once the buffer exceeds maxSize.
// Caller holds the lock.
func (s *TradeStore) trim() {
	if s.maxSize > 0 && len(s.trades) > s.maxSize {
		s.trades = s.trades[len(s.trades)-s.maxSize:]
	}
}

// GetRecent returns the last N trades, newest first.
func (s *TradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if limit <= 0 || limit > len(s.trades) {
		limit = len(s.trades)
	}

	result := make([]*types.Trade, limit)
	for i := 0; i < limit; i++ {
		result[i] = s.trades[len(s.trades)-1-i]
	}
	return result, nil
}

func (s *TradeStore) Close() error {
	return nil
}
