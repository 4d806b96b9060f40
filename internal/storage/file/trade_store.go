package file

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/obsim/order-book-simulator/internal/types"
)

// TradeStore appends trades to a JSON-lines log. Writes happen off the
// submission path; reads return empty, so pair it with the in-memory store
// through a composite when reads are needed.
type TradeStore struct {
	file    *os.File
	encoder *json.Encoder
	mutex   sync.Mutex
}

func NewTradeStore(filePath string) (*TradeStore, error) {
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade log: %w", err)
	}

	return &TradeStore{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

func (s *TradeStore) Save(trade *types.Trade) error {
	go func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		_ = s.encoder.Encode(trade)
	}()
	return nil
}

func (s *TradeStore) SaveBatch(trades []*types.Trade) error {
	go func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		for _, trade := range trades {
			_ = s.encoder.Encode(trade)
		}
	}()
	return nil
}

// GetRecent always returns empty; the log is write-only.
func (s *TradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	return []*types.Trade{}, nil
}

func (s *TradeStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
