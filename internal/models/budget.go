package models

import "github.com/shopspring/decimal"

// MonthLayout is the year-month format used for budget periods.
const MonthLayout = "2006-01"

// Budget represents one user's spending limit for one month.
// There is at most one row per (user, month); setting it again replaces
// the limit.
type Budget struct {
	// UserID is the owning user's ID.
	UserID string

	// Month is the budget period, formatted as MonthLayout.
	Month string

	// Limit is the spending cap for the month.
	Limit decimal.Decimal
}

// BudgetStatus is the derived monthly view: what was spent against which
// limit. Limit is nil when no budget has been set for the month.
type BudgetStatus struct {
	Month      string
	Spent      decimal.Decimal
	Limit      *decimal.Decimal
	OverBudget bool
}
