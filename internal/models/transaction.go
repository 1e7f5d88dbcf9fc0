package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Uncategorized is the label assigned to transactions whose category is
// blank. Blank and NULL categories are normalized to this label both on
// write and in breakdown queries.
const Uncategorized = "uncategorized"

// DateLayout is the calendar-date format used for transaction dates and
// range boundaries.
const DateLayout = "2006-01-02"

// Transaction represents a single ledger entry owned by one user.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// UserID is the owning user's ID.
	UserID string

	// Date is the calendar date of the expense, formatted as DateLayout.
	Date string

	// Description is the free-text note for the entry.
	Description string

	// Amount is the signed, currency-agnostic amount.
	Amount decimal.Decimal

	// Category is the free-text category label, never blank (see
	// NormalizeCategory).
	Category string

	// IsShared marks the entry as part of the shared ledger with the
	// user's partner. Both rows written by a split are flagged shared; a
	// solo entry may also be flagged shared by its owner.
	IsShared bool

	// CreatedAt is the Unix timestamp when the row was recorded.
	CreatedAt int64
}

// CategoryTotal is one slice of a per-category spending breakdown.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// NormalizeCategory maps blank or whitespace-only categories to the
// Uncategorized label and trims the rest.
func NormalizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return Uncategorized
	}
	return trimmed
}
