package account

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/obsim/order-book-simulator/internal/types"
)

var (
	ErrTraderNotFound    = errors.New("trader not found")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountInactive   = errors.New("account is deactivated")
)

// Account holds a trader's balance and status. Balances are decimal so that
// settlement never accumulates float drift.
type Account struct {
	TraderID  uuid.UUID       `json:"trader_id"`
	Username  string          `json:"username"`
	Balance   decimal.Decimal `json:"balance"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// Manager registers traders and keeps their balances. It is safe for
// concurrent use; settlement of a trade list is applied atomically under
// one lock acquisition.
type Manager struct {
	mu             sync.RWMutex
	accounts       map[uuid.UUID]*Account
	usernames      map[string]uuid.UUID
	initialBalance decimal.Decimal
}

func NewManager(initialBalance decimal.Decimal) *Manager {
	return &Manager{
		accounts:       make(map[uuid.UUID]*Account),
		usernames:      make(map[string]uuid.UUID),
		initialBalance: initialBalance,
	}
}

// Register creates a trader account with the configured starting balance.
func (m *Manager) Register(username string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.usernames[username]; taken {
		return Account{}, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}

	acct := &Account{
		TraderID:  uuid.New(),
		Username:  username,
		Balance:   m.initialBalance,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	m.accounts[acct.TraderID] = acct
	m.usernames[username] = acct.TraderID
	return *acct, nil
}

// Get returns a copy of the trader's account.
func (m *Manager) Get(traderID uuid.UUID) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[traderID]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrTraderNotFound, traderID)
	}
	return *acct, nil
}

// GetByUsername returns a copy of the account registered under username.
func (m *Manager) GetByUsername(username string) (Account, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usernames[username]
	if !ok {
		return Account{}, false
	}
	return *m.accounts[id], true
}

// All returns copies of every account, in no particular order.
func (m *Manager) All() []Account {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Account, 0, len(m.accounts))
	for _, acct := range m.accounts {
		out = append(out, *acct)
	}
	return out
}

// UpdateBalance applies a signed amount to the trader's balance and returns
// the new balance. A debit that would take the balance negative is rejected
// without changing anything.
func (m *Manager) UpdateBalance(traderID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateBalanceLocked(traderID, amount)
}

func (m *Manager) updateBalanceLocked(traderID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	acct, ok := m.accounts[traderID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrTraderNotFound, traderID)
	}

	next := acct.Balance.Add(amount)
	if next.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: trader %s", ErrInsufficientFunds, traderID)
	}
	acct.Balance = next
	return next, nil
}

// Deactivate disables the account; deactivated traders fail the upstream
// submission check.
func (m *Manager) Deactivate(traderID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[traderID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTraderNotFound, traderID)
	}
	acct.Active = false
	return nil
}

// CanAfford reports whether the trader's balance covers cost. Used by the
// submission path before the order reaches the matching engine, since the
// engine provides no rollback.
func (m *Manager) CanAfford(traderID uuid.UUID, cost decimal.Decimal) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[traderID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrTraderNotFound, traderID)
	}
	return acct.Balance.GreaterThanOrEqual(cost), nil
}

// Settle applies every trade in the list exactly once: the buy-side trader
// pays price times quantity, the sell-side trader receives it. The trades
// come from an already-final book mutation, so settlement failures are
// surfaced but cannot unwind the match.
func (m *Manager) Settle(trades []*types.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tr := range trades {
		value := TradeValue(tr)

		buyer, seller := tr.MakerTraderID, tr.TakerTraderID
		if tr.TakerSide == types.Buy {
			buyer, seller = tr.TakerTraderID, tr.MakerTraderID
		}

		if _, err := m.updateBalanceLocked(buyer, value.Neg()); err != nil {
			return fmt.Errorf("settle trade %s: %w", tr.ID, err)
		}
		if _, err := m.updateBalanceLocked(seller, value); err != nil {
			return fmt.Errorf("settle trade %s: %w", tr.ID, err)
		}
	}
	return nil
}

// TradeValue is the notional of one trade: price times quantity.
func TradeValue(tr *types.Trade) decimal.Decimal {
	return decimal.NewFromFloat(tr.Price).Mul(decimal.NewFromInt(tr.Quantity))
}

// OrderCost is the funds a buy order may consume at worst: its limit price
// times its full quantity.
func OrderCost(o *types.Order) decimal.Decimal {
	return decimal.NewFromFloat(o.Price).Mul(decimal.NewFromInt(o.Quantity))
}
