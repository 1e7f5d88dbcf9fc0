package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/achi131830/transaction-tracker-postgres/internal/models"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
)

const txnColumns = `id, user_id, txn_date, description, amount, category, is_shared, created_at`

const catExpr = `COALESCE(NULLIF(TRIM(category), ''), 'uncategorized')`

// CreateTransaction inserts a single ledger entry, assigning ID and
// CreatedAt if unset.
func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	prepareTransaction(txn)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (`+txnColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		txn.ID, txn.UserID, txn.Date, txn.Description, txn.Amount.String(),
		txn.Category, txn.IsShared, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// CreateSharedPair inserts both halves of a split within one transaction.
func (s *Store) CreateSharedPair(ctx context.Context, mine, partners *models.Transaction) error {
	prepareTransaction(mine)
	prepareTransaction(partners)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const insert = `INSERT INTO transactions (` + txnColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, txn := range []*models.Transaction{mine, partners} {
		if _, err := tx.ExecContext(ctx, insert,
			txn.ID, txn.UserID, txn.Date, txn.Description, txn.Amount.String(),
			txn.Category, txn.IsShared, txn.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert shared pair: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit shared pair: %w", err)
	}
	return nil
}

// ListTransactions returns all of a user's entries, newest date first.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE user_id = $1
		 ORDER BY txn_date DESC, created_at DESC`, userID)
}

// ListTransactionsFrom returns a user's entries dated on or after fromDate.
func (s *Store) ListTransactionsFrom(ctx context.Context, userID, fromDate string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE user_id = $1 AND txn_date >= $2
		 ORDER BY txn_date DESC, created_at DESC`, userID, fromDate)
}

// ListTransactionsBetween returns a user's entries within [start, end].
func (s *Store) ListTransactionsBetween(ctx context.Context, userID, start, end string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE user_id = $1 AND txn_date BETWEEN $2 AND $3
		 ORDER BY txn_date DESC, created_at DESC`, userID, start, end)
}

// ListTransactionsForMonth returns a user's entries within one month.
func (s *Store) ListTransactionsForMonth(ctx context.Context, userID, month string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE user_id = $1 AND substr(txn_date, 1, 7) = $2
		 ORDER BY txn_date DESC, created_at DESC`, userID, month)
}

// ListByCategory returns a user's entries in one category, optionally
// range-bounded.
func (s *Store) ListByCategory(ctx context.Context, userID, category, start, end string) ([]models.Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM transactions WHERE user_id = $1 AND ` + catExpr + ` = $2`
	args := []any{userID, category}
	if start != "" && end != "" {
		query += ` AND txn_date BETWEEN $3 AND $4`
		args = append(args, start, end)
	}
	query += ` ORDER BY txn_date DESC, created_at DESC`
	return s.queryTransactions(ctx, query, args...)
}

// ListSharedByCategory returns shared entries of both paired users in one
// category, optionally range-bounded.
func (s *Store) ListSharedByCategory(ctx context.Context, userID, partnerID, category, start, end string) ([]models.Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM transactions
		 WHERE is_shared = TRUE AND user_id IN ($1, $2) AND ` + catExpr + ` = $3`
	args := []any{userID, partnerID, category}
	if start != "" && end != "" {
		query += ` AND txn_date BETWEEN $4 AND $5`
		args = append(args, start, end)
	}
	query += ` ORDER BY txn_date DESC, created_at DESC`
	return s.queryTransactions(ctx, query, args...)
}

// CategoryTotals returns a user's per-category totals, optionally bounded
// by an inclusive date range.
func (s *Store) CategoryTotals(ctx context.Context, userID, start, end string) ([]models.CategoryTotal, error) {
	query := `SELECT ` + catExpr + ` AS category, SUM(amount) AS total
		 FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if start != "" && end != "" {
		query += ` AND txn_date BETWEEN $2 AND $3`
		args = append(args, start, end)
	}
	query += ` GROUP BY ` + catExpr
	return s.queryCategoryTotals(ctx, query, args...)
}

// SharedCategoryTotals returns per-category totals over both users'
// shared entries.
func (s *Store) SharedCategoryTotals(ctx context.Context, userID, partnerID string) ([]models.CategoryTotal, error) {
	return s.queryCategoryTotals(ctx,
		`SELECT `+catExpr+` AS category, SUM(amount) AS total
		 FROM transactions WHERE is_shared = TRUE AND user_id IN ($1, $2)
		 GROUP BY `+catExpr, userID, partnerID)
}

// UpdateCategory reassigns one entry's category.
func (s *Store) UpdateCategory(ctx context.Context, id, userID, category string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET category = $1 WHERE id = $2 AND user_id = $3`,
		category, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireAffected(res)
}

// DeleteTransaction removes one entry owned by userID.
func (s *Store) DeleteTransaction(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireAffected(res)
}

// DeleteAllTransactions removes every entry owned by userID.
func (s *Store) DeleteAllTransactions(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Date, &txn.Description,
			&txn.Amount, &txn.Category, &txn.IsShared, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

func (s *Store) queryCategoryTotals(ctx context.Context, query string, args ...any) ([]models.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	var totals []models.CategoryTotal
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category totals: %w", err)
	}
	return totals, nil
}

func prepareTransaction(txn *models.Transaction) {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	txn.Category = models.NormalizeCategory(txn.Category)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
