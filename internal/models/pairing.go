package models

// PairingStatus is the derived view of a user's pairing relationship,
// recomputed from the two directional pointers on every read.
type PairingStatus struct {
	// UserID is the user the status was computed for.
	UserID string

	// PartnerID is the user's stored pointer, or empty if unset. A pointer
	// to a since-deleted user reads as empty.
	PartnerID string

	// Mutual reports whether the partner's pointer refers back to UserID.
	Mutual bool
}
