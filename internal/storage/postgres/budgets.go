package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/achi131830/transaction-tracker-postgres/internal/models"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
)

// UpsertBudget inserts or replaces the spending limit for (user, month).
func (s *Store) UpsertBudget(ctx context.Context, budget *models.Budget) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, month, spend_limit) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, month) DO UPDATE SET spend_limit = EXCLUDED.spend_limit`,
		budget.UserID, budget.Month, budget.Limit.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}
	return nil
}

// GetBudget retrieves the budget for (user, month).
func (s *Store) GetBudget(ctx context.Context, userID, month string) (*models.Budget, error) {
	budget := &models.Budget{}
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, month, spend_limit FROM budgets WHERE user_id = $1 AND month = $2`,
		userID, month,
	).Scan(&budget.UserID, &budget.Month, &budget.Limit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return budget, nil
}
