package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/achi131830/transaction-tracker-postgres/internal/models"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
)

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, partner_id, created_at)
		 VALUES (?, ?, ?, NULLIF(?, ''), ?)`,
		user.ID, user.Username, user.PasswordHash, user.PartnerID, user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx,
		`SELECT id, username, password_hash, partner_id, created_at FROM users WHERE id = ?`, id)
}

// GetUserByUsername retrieves a user by their login name.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx,
		`SELECT id, username, password_hash, partner_id, created_at FROM users WHERE username = ?`, username)
}

func (s *SQLiteStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var partnerID sql.NullString

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &partnerID, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.PartnerID = partnerID.String
	return user, nil
}

// SetPartner writes userID's pairing pointer. Only the one row is touched.
func (s *SQLiteStore) SetPartner(ctx context.Context, userID, partnerID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET partner_id = ? WHERE id = ?`, partnerID, userID)
	if err != nil {
		return fmt.Errorf("failed to set partner: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set partner: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ClearPairing unsets the pairing pointer on both users in one transaction,
// so neither side is left pointing at the other after an unpair.
func (s *SQLiteStore) ClearPairing(ctx context.Context, userID, partnerID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET partner_id = NULL WHERE id = ?`, userID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear pairing: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET partner_id = NULL WHERE id = ?`, partnerID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			// First write may have stuck: this is the one state callers
			// must distinguish from a clean failure.
			return fmt.Errorf("clearing partner side failed and rollback failed (%v): %w",
				rbErr, storage.ErrPartialWrite)
		}
		return fmt.Errorf("failed to clear partner pairing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pairing clear: %w", err)
	}
	return nil
}
