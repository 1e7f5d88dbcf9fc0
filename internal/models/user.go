package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the login name, unique across accounts.
	Username string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// PartnerID is the directional pairing pointer: the ID of the user this
	// account wants to share expenses with, or empty if unset. The pairing
	// is only mutual when the referenced user's PartnerID points back here;
	// that derivation lives in internal/pairing and is never stored.
	PartnerID string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates a user with a fresh ID and creation timestamp.
func NewUser(username, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}
