package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/obsim/order-book-simulator/internal/account"
)

// AccountStore implements storage.AccountStore on PostgreSQL. Balances are
// written as their decimal string form and read back through
// decimal.NewFromString, so no precision is lost in transit.
type AccountStore struct {
	pool *pgxpool.Pool
}

func NewAccountStore(cfg Config) (*AccountStore, error) {
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

	return &AccountStore{pool: pool}, nil
}

func (s *AccountStore) Save(acct *account.Account) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO trader_accounts (trader_id, username, balance, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (trader_id) DO UPDATE SET
			balance = EXCLUDED.balance,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		acct.TraderID, acct.Username, acct.Balance.String(),
		acct.Active, acct.CreatedAt, time.Now(),
	)
	return err
}

func (s *AccountStore) Get(traderID uuid.UUID) (*account.Account, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		SELECT trader_id, username, balance, active, created_at
		FROM trader_accounts
		WHERE trader_id = $1
	`

	acct, err := scanAccount(s.pool.QueryRow(ctx, query, traderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, account.ErrTraderNotFound
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}

func (s *AccountStore) GetAll() []*account.Account {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
		SELECT trader_id, username, balance, active, created_at
		FROM trader_accounts
		ORDER BY created_at
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return []*account.Account{}
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			continue
		}
		accounts = append(accounts, acct)
	}
	return accounts
}

func (s *AccountStore) Close() error {
	s.pool.Close()
	return nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		acct    account.Account
		balance string
	)
	err := row.Scan(&acct.TraderID, &acct.Username, &balance, &acct.Active, &acct.CreatedAt)
	if err != nil {
		return nil, err
	}
	acct.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance for trader %s: %w", acct.TraderID, err)
	}
	return &acct, nil
}
