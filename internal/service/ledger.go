// Package service implements the application operations exposed to the
// HTTP layer: recording and querying transactions, monthly budgets,
// category analysis, and the partner-facing flows built on the pairing
// manager and splitter.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/achi131830/transaction-tracker-postgres/internal/models"
	"github.com/achi131830/transaction-tracker-postgres/internal/pairing"
	"github.com/achi131830/transaction-tracker-postgres/internal/splitter"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
)

// Range selectors accepted by Query.
const (
	RangeWeek   = "week"
	RangeMonth  = "month"
	RangeYear   = "year"
	RangeCustom = "custom"
)

// ErrInvalidRange is returned when a query names an unknown range selector
// or a custom range without both bounds.
var ErrInvalidRange = errors.New("invalid query range")

// Scope selectors for category drill-downs.
const (
	ScopeSelf    = "self"
	ScopePartner = "partner"
)

// AddTransactionInput carries a new ledger entry.
type AddTransactionInput struct {
	Date        string
	Description string
	Amount      decimal.Decimal
	Category    string

	// Shared marks the row as part of the shared ledger without splitting.
	Shared bool

	// SplitWithPartner routes the entry through the splitter: two rows,
	// one per paired user, summing to Amount.
	SplitWithPartner bool
}

// LedgerView is a list of transactions with the period total and the
// month's budget standing.
type LedgerView struct {
	Transactions []models.Transaction
	Total        decimal.Decimal
	Month        string
	Limit        *decimal.Decimal
	OverBudget   bool
}

// Ledger exposes the expense-tracking operations.
type Ledger struct {
	store    storage.Store
	pairing  *pairing.Manager
	splitter *splitter.Splitter
}

// NewLedger wires the service over its collaborators.
func NewLedger(store storage.Store, p *pairing.Manager, sp *splitter.Splitter) *Ledger {
	return &Ledger{store: store, pairing: p, splitter: sp}
}

// Pairing exposes the pairing manager for the partner endpoints.
func (l *Ledger) Pairing() *pairing.Manager {
	return l.pairing
}

// AddTransaction records a new entry. With SplitWithPartner set it
// delegates to the splitter and returns both rows; otherwise it writes a
// single row and returns it alone.
func (l *Ledger) AddTransaction(ctx context.Context, userID string, in AddTransactionInput) ([]models.Transaction, error) {
	if in.SplitWithPartner {
		mine, partners, err := l.splitter.SplitAndRecord(ctx, userID, in.Date, in.Description, in.Amount, in.Category)
		if err != nil {
			return nil, err
		}
		slog.Info("Split recorded",
			"user_id", userID,
			"partner_id", partners.UserID,
			"amount", in.Amount.String(),
		)
		return []models.Transaction{*mine, *partners}, nil
	}

	txn := &models.Transaction{
		UserID:      userID,
		Date:        in.Date,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		IsShared:    in.Shared,
	}
	if err := l.store.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return []models.Transaction{*txn}, nil
}

// List returns all of a user's entries, newest first.
func (l *Ledger) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	return l.store.ListTransactions(ctx, userID)
}

// Overview returns the full ledger together with the current month's
// total and budget standing.
func (l *Ledger) Overview(ctx context.Context, userID string) (*LedgerView, error) {
	txns, err := l.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	month := time.Now().Format(models.MonthLayout)
	status, err := l.BudgetStatus(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	return &LedgerView{
		Transactions: txns,
		Total:        status.Spent,
		Month:        month,
		Limit:        status.Limit,
		OverBudget:   status.OverBudget,
	}, nil
}

// Query returns the entries of one period with their total, checked
// against the budget of the period's month (the current month for rolling
// ranges, the start month for custom ranges).
func (l *Ledger) Query(ctx context.Context, userID, rangeName, start, end string) (*LedgerView, error) {
	now := time.Now()
	month := now.Format(models.MonthLayout)

	var (
		txns []models.Transaction
		err  error
	)
	switch rangeName {
	case RangeCustom:
		if start == "" || end == "" {
			return nil, fmt.Errorf("%w: custom range needs start and end", ErrInvalidRange)
		}
		// Parsing keeps non-padded dates like 2026-8-05 from producing a
		// malformed month key.
		startDate, parseErr := time.Parse(models.DateLayout, start)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: start must be a calendar date", ErrInvalidRange)
		}
		txns, err = l.store.ListTransactionsBetween(ctx, userID, start, end)
		month = startDate.Format(models.MonthLayout)
	case RangeWeek:
		txns, err = l.store.ListTransactionsFrom(ctx, userID, now.AddDate(0, 0, -7).Format(models.DateLayout))
	case RangeMonth:
		txns, err = l.store.ListTransactionsFrom(ctx, userID, now.AddDate(0, -1, 0).Format(models.DateLayout))
	case RangeYear:
		txns, err = l.store.ListTransactionsFrom(ctx, userID, now.AddDate(-1, 0, 0).Format(models.DateLayout))
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRange, rangeName)
	}
	if err != nil {
		return nil, err
	}

	total := sumAmounts(txns)
	limit, err := l.budgetLimit(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	return &LedgerView{
		Transactions: txns,
		Total:        total,
		Month:        month,
		Limit:        limit,
		OverBudget:   limit != nil && total.GreaterThan(*limit),
	}, nil
}

// UpdateCategory reassigns one entry's category.
func (l *Ledger) UpdateCategory(ctx context.Context, userID, txnID, category string) error {
	return l.store.UpdateCategory(ctx, txnID, userID, models.NormalizeCategory(category))
}

// Delete removes one entry.
func (l *Ledger) Delete(ctx context.Context, userID, txnID string) error {
	return l.store.DeleteTransaction(ctx, txnID, userID)
}

// DeleteAll removes every entry owned by the user.
func (l *Ledger) DeleteAll(ctx context.Context, userID string) error {
	return l.store.DeleteAllTransactions(ctx, userID)
}

// SetBudget upserts the month's spending limit and returns the resulting
// budget standing.
func (l *Ledger) SetBudget(ctx context.Context, userID, month string, limit decimal.Decimal) (*models.BudgetStatus, error) {
	budget := &models.Budget{UserID: userID, Month: month, Limit: limit}
	if err := l.store.UpsertBudget(ctx, budget); err != nil {
		return nil, err
	}
	return l.BudgetStatus(ctx, userID, month)
}

// BudgetStatus reports the month's spending against its limit. Limit is
// nil when no budget has been set.
func (l *Ledger) BudgetStatus(ctx context.Context, userID, month string) (*models.BudgetStatus, error) {
	txns, err := l.store.ListTransactionsForMonth(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	spent := sumAmounts(txns)

	limit, err := l.budgetLimit(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	return &models.BudgetStatus{
		Month:      month,
		Spent:      spent,
		Limit:      limit,
		OverBudget: limit != nil && spent.GreaterThan(*limit),
	}, nil
}

// Analysis returns the user's per-category totals, optionally bounded by
// an inclusive date range.
func (l *Ledger) Analysis(ctx context.Context, userID, start, end string) ([]models.CategoryTotal, error) {
	return l.store.CategoryTotals(ctx, userID, start, end)
}

// PartnerAnalysis returns per-category totals across both paired users'
// shared entries. It requires a pairing pointer to be set; a dangling
// pointer reads as unpaired.
func (l *Ledger) PartnerAnalysis(ctx context.Context, userID string) ([]models.CategoryTotal, error) {
	partnerID, err := l.livePartner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return l.store.SharedCategoryTotals(ctx, userID, partnerID)
}

// CategoryTransactions returns the entries behind one slice of the
// analysis breakdown. Scope "partner" covers both paired users' shared
// entries; anything else covers the user's own rows.
func (l *Ledger) CategoryTransactions(ctx context.Context, userID, category, scope, start, end string) ([]models.Transaction, error) {
	category = models.NormalizeCategory(category)
	if scope == ScopePartner {
		partnerID, err := l.livePartner(ctx, userID)
		if err != nil {
			return nil, err
		}
		return l.store.ListSharedByCategory(ctx, userID, partnerID, category, start, end)
	}
	return l.store.ListByCategory(ctx, userID, category, start, end)
}

// livePartner resolves the user's partner pointer and verifies the target
// account still exists.
func (l *Ledger) livePartner(ctx context.Context, userID string) (string, error) {
	partnerID, err := l.pairing.ResolvePartner(ctx, userID)
	if err != nil {
		return "", err
	}
	if partnerID == "" {
		return "", pairing.ErrNotPaired
	}
	if _, err := l.store.GetUserByID(ctx, partnerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", pairing.ErrNotPaired
		}
		return "", err
	}
	return partnerID, nil
}

func (l *Ledger) budgetLimit(ctx context.Context, userID, month string) (*decimal.Decimal, error) {
	budget, err := l.store.GetBudget(ctx, userID, month)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &budget.Limit, nil
}

func sumAmounts(txns []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(txn.Amount)
	}
	return total
}
