package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/achi131830/transaction-tracker-postgres/internal/models"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
)

const txnColumns = `id, user_id, txn_date, description, amount, category, is_shared, created_at`

// catExpr folds blank and whitespace-only categories into the
// models.Uncategorized label at query time, so legacy rows group together
// with normalized ones.
const catExpr = `COALESCE(NULLIF(TRIM(category), ''), 'uncategorized')`

// CreateTransaction inserts a single ledger entry, assigning ID and
// CreatedAt if unset.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	prepareTransaction(txn)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (`+txnColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.UserID, txn.Date, txn.Description, txn.Amount.String(),
		txn.Category, txn.IsShared, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// CreateSharedPair inserts both halves of a split within one transaction:
// a half-written split would break the sum invariant, so either both rows
// become visible or neither does.
func (s *SQLiteStore) CreateSharedPair(ctx context.Context, mine, partners *models.Transaction) error {
	prepareTransaction(mine)
	prepareTransaction(partners)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const insert = `INSERT INTO transactions (` + txnColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
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
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE user_id = ?
		 ORDER BY txn_date DESC, created_at DESC`, userID)
}

// ListTransactionsFrom returns a user's entries dated on or after fromDate.
func (s *SQLiteStore) ListTransactionsFrom(ctx context.Context, userID, fromDate string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE user_id = ? AND txn_date >= ?
		 ORDER BY txn_date DESC, created_at DESC`, userID, fromDate)
}

// ListTransactionsBetween returns a user's entries within [start, end].
func (s *SQLiteStore) ListTransactionsBetween(ctx context.Context, userID, start, end string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE user_id = ? AND txn_date BETWEEN ? AND ?
		 ORDER BY txn_date DESC, created_at DESC`, userID, start, end)
}

// ListTransactionsForMonth returns a user's entries within one month.
func (s *SQLiteStore) ListTransactionsForMonth(ctx context.Context, userID, month string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE user_id = ? AND substr(txn_date, 1, 7) = ?
		 ORDER BY txn_date DESC, created_at DESC`, userID, month)
}

// ListByCategory returns a user's entries in one category, optionally
// range-bounded.
func (s *SQLiteStore) ListByCategory(ctx context.Context, userID, category, start, end string) ([]models.Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM transactions WHERE user_id = ? AND ` + catExpr + ` = ?`
	args := []any{userID, category}
	if start != "" && end != "" {
		query += ` AND txn_date BETWEEN ? AND ?`
		args = append(args, start, end)
	}
	query += ` ORDER BY txn_date DESC, created_at DESC`
	return s.queryTransactions(ctx, query, args...)
}

// ListSharedByCategory returns shared entries of both paired users in one
// category, optionally range-bounded.
func (s *SQLiteStore) ListSharedByCategory(ctx context.Context, userID, partnerID, category, start, end string) ([]models.Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM transactions
		 WHERE is_shared = 1 AND user_id IN (?, ?) AND ` + catExpr + ` = ?`
	args := []any{userID, partnerID, category}
	if start != "" && end != "" {
		query += ` AND txn_date BETWEEN ? AND ?`
		args = append(args, start, end)
	}
	query += ` ORDER BY txn_date DESC, created_at DESC`
	return s.queryTransactions(ctx, query, args...)
}

// CategoryTotals returns a user's per-category totals, optionally bounded
// by an inclusive date range.
func (s *SQLiteStore) CategoryTotals(ctx context.Context, userID, start, end string) ([]models.CategoryTotal, error) {
	query := `SELECT ` + catExpr + ` AS category, amount FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if start != "" && end != "" {
		query += ` AND txn_date BETWEEN ? AND ?`
		args = append(args, start, end)
	}
	return s.queryCategoryTotals(ctx, query, args...)
}

// SharedCategoryTotals returns per-category totals over both users'
// shared entries.
func (s *SQLiteStore) SharedCategoryTotals(ctx context.Context, userID, partnerID string) ([]models.CategoryTotal, error) {
	return s.queryCategoryTotals(ctx,
		`SELECT `+catExpr+` AS category, amount FROM transactions
		 WHERE is_shared = 1 AND user_id IN (?, ?)`, userID, partnerID)
}

// UpdateCategory reassigns one entry's category.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, id, userID, category string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET category = ? WHERE id = ? AND user_id = ?`,
		category, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireAffected(res)
}

// DeleteTransaction removes one entry owned by userID.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireAffected(res)
}

// DeleteAllTransactions removes every entry owned by userID.
func (s *SQLiteStore) DeleteAllTransactions(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
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

// queryCategoryTotals aggregates (category, amount) rows in Go. SQLite
// would sum the TEXT amounts through floating point; summing decimals
// here keeps the totals exact.
func (s *SQLiteStore) queryCategoryTotals(ctx context.Context, query string, args ...any) ([]models.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			category string
			amount   decimal.Decimal
		)
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		sums[category] = sums[category].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category totals: %w", err)
	}

	totals := make([]models.CategoryTotal, 0, len(sums))
	for category, total := range sums {
		totals = append(totals, models.CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })
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
