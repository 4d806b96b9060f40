package storage

import (
	"github.com/google/uuid"

	"github.com/obsim/order-book-simulator/internal/account"
	"github.com/obsim/order-book-simulator/internal/types"
)

// OrderStore abstracts order persistence. Implementations can be in-memory
// (map), Redis, PostgreSQL, or a composite of several layers.
type OrderStore interface {
	// Save stores a new order
	Save(order *types.Order) error

	// Get retrieves an order by ID
	Get(orderID uuid.UUID) (*types.Order, error)

	// Remove deletes an order from storage
	Remove(orderID uuid.UUID) error

	// Update modifies an existing order (remaining quantity after fills)
	Update(order *types.Order) error

	// GetAll returns all tracked orders
	GetAll() []*types.Order

	// GetByTrader returns all orders submitted by a trader
	GetByTrader(traderID uuid.UUID) []*types.Order

	// GetBySide returns all orders on one side of the book
	GetBySide(side types.Side) []*types.Order

	// Close releases any resources held by the store
	Close() error
}

// TradeStore abstracts trade persistence. Implementations can be an
// in-memory buffer, append-only file log, Redis, or PostgreSQL.
type TradeStore interface {
	// Save persists a single trade
	Save(trade *types.Trade) error

	// SaveBatch persists multiple trades (one submission can produce many)
	SaveBatch(trades []*types.Trade) error

	// GetRecent retrieves the N most recent trades, newest first
	GetRecent(limit int) ([]*types.Trade, error)

	// Close releases any resources held by the store
	Close() error
}

// AccountStore persists trader accounts and balances. The in-memory account
// manager stays authoritative; stores record registrations and settled
// balances for durability.
type AccountStore interface {
	// Save upserts an account snapshot
	Save(acct *account.Account) error

	// Get retrieves an account by trader ID
	Get(traderID uuid.UUID) (*account.Account, error)

	// GetAll returns every persisted account
	GetAll() []*account.Account

	// Close releases any resources held by the store
	Close() error
}
