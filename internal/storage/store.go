// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/achi131830/transaction-tracker-postgres/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a uniqueness constraint (such as
	// the username) is violated.
	ErrAlreadyExists = errors.New("already exists")

	// ErrPartialWrite is returned when a multi-row write was applied only
	// partially and could not be rolled back. Callers must surface this
	// distinctly from a total failure.
	ErrPartialWrite = errors.New("partial write")
)

// UserStore defines persistence operations over user records.
type UserStore interface {
	// CreateUser inserts a new user row. Returns ErrAlreadyExists if the
	// username is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByUsername retrieves a user by username. Returns ErrNotFound
	// if absent.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// SetPartner writes userID's pairing pointer. It touches only the one
	// row; the target's pointer is never modified. Returns ErrNotFound if
	// userID does not exist.
	SetPartner(ctx context.Context, userID, partnerID string) error

	// ClearPairing unsets the pairing pointer on both userID and
	// partnerID within a single transaction.
	ClearPairing(ctx context.Context, userID, partnerID string) error
}

// TransactionStore defines persistence operations over ledger entries.
// Date range parameters are inclusive DateLayout strings; an empty start
// and end means unbounded.
type TransactionStore interface {
	// CreateTransaction inserts a single entry, assigning ID and CreatedAt
	// if unset.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error

	// CreateSharedPair inserts the two halves of a split as a single
	// atomic unit: either both rows become visible or neither does.
	CreateSharedPair(ctx context.Context, mine, partners *models.Transaction) error

	// ListTransactions returns all of a user's entries, newest date first.
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)

	// ListTransactionsFrom returns a user's entries dated on or after
	// fromDate, newest first.
	ListTransactionsFrom(ctx context.Context, userID, fromDate string) ([]models.Transaction, error)

	// ListTransactionsBetween returns a user's entries within [start, end],
	// newest first.
	ListTransactionsBetween(ctx context.Context, userID, start, end string) ([]models.Transaction, error)

	// ListTransactionsForMonth returns a user's entries within one
	// MonthLayout month, newest first.
	ListTransactionsForMonth(ctx context.Context, userID, month string) ([]models.Transaction, error)

	// ListByCategory returns a user's entries in one category (blank
	// categories match Uncategorized), optionally range-bounded.
	ListByCategory(ctx context.Context, userID, category, start, end string) ([]models.Transaction, error)

	// ListSharedByCategory returns the shared entries of both users in one
	// category, optionally range-bounded.
	ListSharedByCategory(ctx context.Context, userID, partnerID, category, start, end string) ([]models.Transaction, error)

	// CategoryTotals returns a user's per-category totals, optionally
	// range-bounded, with blank categories folded into Uncategorized.
	CategoryTotals(ctx context.Context, userID, start, end string) ([]models.CategoryTotal, error)

	// SharedCategoryTotals returns per-category totals over both users'
	// shared entries.
	SharedCategoryTotals(ctx context.Context, userID, partnerID string) ([]models.CategoryTotal, error)

	// UpdateCategory reassigns one entry's category. Returns ErrNotFound
	// if the entry does not exist or is not owned by userID.
	UpdateCategory(ctx context.Context, id, userID, category string) error

	// DeleteTransaction removes one entry. Returns ErrNotFound if the
	// entry does not exist or is not owned by userID.
	DeleteTransaction(ctx context.Context, id, userID string) error

	// DeleteAllTransactions removes every entry owned by userID.
	DeleteAllTransactions(ctx context.Context, userID string) error
}

// BudgetStore defines persistence operations over monthly budgets.
type BudgetStore interface {
	// UpsertBudget inserts or replaces the limit for (user, month).
	UpsertBudget(ctx context.Context, budget *models.Budget) error

	// GetBudget retrieves the budget for (user, month). Returns
	// ErrNotFound if none has been set.
	GetBudget(ctx context.Context, userID, month string) (*models.Budget, error)
}

// Store is the full persistence interface consumed by the service layer.
// The abstraction allows swapping backends (SQLite, Postgres) without
// changing any caller.
type Store interface {
	UserStore
	TransactionStore
	BudgetStore

	// Close releases any resources held by the store.
	Close() error
}
