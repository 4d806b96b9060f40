package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed 001_initial_schema.sql
var initialSchema string

// RunMigrations applies the schema. The DDL is idempotent, so running it on
// every startup is safe; a proper migration tool can replace this later.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, initialSchema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
