// Package pairing maintains the directional partner link between two user
// records and derives mutual-pairing status from it.
//
// The relationship is modeled as two independent directional pointers
// (each user's partner_id). It is mutual only when both pointers refer to
// each other, pending when exactly one does, and absent otherwise. The
// status is recomputed from the pointers on every read — there is no
// cached flag to drift — because either side can unpair at any time.
package pairing

import (
	"context"
	"errors"
	"fmt"

	"github.com/achi131830/transaction-tracker-postgres/internal/models"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
)

var (
	// ErrUserNotFound is returned when the acting user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrPartnerNotFound is returned when a pairing request names a user
	// that does not exist. No pointer is written.
	ErrPartnerNotFound = errors.New("partner not found")

	// ErrSelfPairing is returned when a user tries to pair with their own
	// ID. No pointer is written.
	ErrSelfPairing = errors.New("invalid target")

	// ErrNotPaired is returned by operations that require a confirmed
	// mutual pairing when the relationship is pending or absent.
	ErrNotPaired = errors.New("not mutually paired")

	// ErrPartialUnpair is returned when an unpair cleared one side but the
	// other side's clear could not be applied or rolled back, leaving the
	// link half-severed.
	ErrPartialUnpair = errors.New("unpair applied partially")
)

// Result is the outcome of a pairing request.
type Result struct {
	PartnerID string
	Mutual    bool
	Message   string
}

// Manager resolves, validates, and mutates the pairing link.
type Manager struct {
	users storage.UserStore
}

// NewManager creates a pairing manager over the given user store.
func NewManager(users storage.UserStore) *Manager {
	return &Manager{users: users}
}

// ResolvePartner returns the partner pointer stored for userID, or empty
// if unset. The pointer may be dangling; callers that need a live partner
// must check with IsMutual or GetUserByID.
func (m *Manager) ResolvePartner(ctx context.Context, userID string) (string, error) {
	user, err := m.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve partner: %w", err)
	}
	return user.PartnerID, nil
}

// IsMutual reports whether partnerID's stored pointer refers back to
// userID. A blank or dangling partner reads as false, never as an error.
// This is a pure read and is recomputed on every call.
func (m *Manager) IsMutual(ctx context.Context, userID, partnerID string) (bool, error) {
	if partnerID == "" {
		return false, nil
	}
	partner, err := m.users.GetUserByID(ctx, partnerID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check mutuality: %w", err)
	}
	return partner.PartnerID == userID, nil
}

// Status derives the full pairing view for userID. A dangling pointer is
// reported as absent.
func (m *Manager) Status(ctx context.Context, userID string) (*models.PairingStatus, error) {
	partnerID, err := m.ResolvePartner(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &models.PairingStatus{UserID: userID}
	if partnerID == "" {
		return status, nil
	}

	partner, err := m.users.GetUserByID(ctx, partnerID)
	if errors.Is(err, storage.ErrNotFound) {
		// Partner account deleted after pairing: treat as absent.
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pairing status: %w", err)
	}

	status.PartnerID = partnerID
	status.Mutual = partner.PartnerID == userID
	return status, nil
}

// RequestPairing points userID's pairing pointer at targetID. The write is
// one-sided: the target's record is never modified, so the relationship
// only becomes mutual once the target independently requests userID back.
// Mutuality is recomputed right after the write from the target's
// unmodified pointer.
func (m *Manager) RequestPairing(ctx context.Context, userID, targetID string) (*Result, error) {
	if targetID == userID {
		return nil, ErrSelfPairing
	}

	if _, err := m.users.GetUserByID(ctx, targetID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("request pairing: %w", err)
	}

	if err := m.users.SetPartner(ctx, userID, targetID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("request pairing: %w", err)
	}

	mutual, err := m.IsMutual(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}

	message := "pairing request sent, waiting for your partner to add you back"
	if mutual {
		message = "pairing confirmed"
	}
	return &Result{PartnerID: targetID, Mutual: mutual, Message: message}, nil
}

// Unpair severs the link from both ends, regardless of whether it was
// mutual: after a successful unpair neither record points at the other.
// Unpairing with no partner set is a no-op success.
func (m *Manager) Unpair(ctx context.Context, userID string) error {
	partnerID, err := m.ResolvePartner(ctx, userID)
	if err != nil {
		return err
	}
	if partnerID == "" {
		return nil
	}

	if err := m.users.ClearPairing(ctx, userID, partnerID); err != nil {
		if errors.Is(err, storage.ErrPartialWrite) {
			return fmt.Errorf("%w: %v", ErrPartialUnpair, err)
		}
		return fmt.Errorf("unpair: %w", err)
	}
	return nil
}
