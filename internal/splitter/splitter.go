// Package splitter turns one shared ("AA") expense into two linked
// transaction rows, one per paired user, that together reconstitute the
// original amount exactly.
package splitter

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/achi131830/transaction-tracker-postgres/internal/models"
	"github.com/achi131830/transaction-tracker-postgres/internal/pairing"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
)

// SharedScale is the system rounding rule for split amounts: the
// requester's half is amount/2 rounded half-away-from-zero to this many
// decimal places. The partner's share is the exact remainder, so the two
// rows always sum back to the original amount.
const SharedScale = 2

var two = decimal.NewFromInt(2)

// Split divides amount into the requester's half and the partner's
// remainder. half + remainder == amount holds for every input; each side
// individually may carry a rounding artifact of at most half a unit at
// SharedScale.
func Split(amount decimal.Decimal) (half, remainder decimal.Decimal) {
	half = amount.DivRound(two, SharedScale)
	remainder = amount.Sub(half)
	return half, remainder
}

// Splitter records split expenses against the transaction store, gated by
// the pairing manager.
type Splitter struct {
	pairing *pairing.Manager
	store   storage.TransactionStore
}

// New creates a splitter over the given pairing manager and store.
func New(p *pairing.Manager, store storage.TransactionStore) *Splitter {
	return &Splitter{pairing: p, store: store}
}

// SplitAndRecord splits amount 50/50 between userID and their partner and
// writes one shared transaction row per user as a single atomic unit.
// It fails with pairing.ErrNotPaired — writing nothing — unless the
// pairing is mutual at the time of the call.
func (s *Splitter) SplitAndRecord(ctx context.Context, userID, date, description string, amount decimal.Decimal, category string) (mine, partners *models.Transaction, err error) {
	partnerID, err := s.pairing.ResolvePartner(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	mutual, err := s.pairing.IsMutual(ctx, userID, partnerID)
	if err != nil {
		return nil, nil, err
	}
	if !mutual {
		return nil, nil, pairing.ErrNotPaired
	}

	half, remainder := Split(amount)
	category = models.NormalizeCategory(category)

	mine = &models.Transaction{
		UserID:      userID,
		Date:        date,
		Description: description,
		Amount:      half,
		Category:    category,
		IsShared:    true,
	}
	partners = &models.Transaction{
		UserID:      partnerID,
		Date:        date,
		Description: description,
		Amount:      remainder,
		Category:    category,
		IsShared:    true,
	}

	if err := s.store.CreateSharedPair(ctx, mine, partners); err != nil {
		return nil, nil, fmt.Errorf("record split: %w", err)
	}
	return mine, partners, nil
}
