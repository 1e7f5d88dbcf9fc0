// Package postgres provides a Postgres-backed implementation of the
// storage.Store interface, for deployments with a shared database server.
// It speaks database/sql over the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver

	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence.
type Store struct {
	db *sql.DB
}

// New connects to the database at databaseURL and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			partner_id TEXT,
			created_at BIGINT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			txn_date TEXT NOT NULL,
			description TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			category TEXT NOT NULL,
			is_shared BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS budgets (
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			month TEXT NOT NULL,
			spend_limit NUMERIC NOT NULL,
			PRIMARY KEY (user_id, month)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(txn_date);`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_shared ON transactions(is_shared, user_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}
