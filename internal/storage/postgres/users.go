package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/achi131830/transaction-tracker-postgres/internal/models"
	"github.com/achi131830/transaction-tracker-postgres/internal/storage"
)

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, partner_id, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)`,
		user.ID, user.Username, user.PasswordHash, user.PartnerID, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID fetches a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx,
		`SELECT id, username, password_hash, partner_id, created_at FROM users WHERE id = $1`, id)
}

// GetUserByUsername fetches a user by login name.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx,
		`SELECT id, username, password_hash, partner_id, created_at FROM users WHERE username = $1`, username)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
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
func (s *Store) SetPartner(ctx context.Context, userID, partnerID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET partner_id = $1 WHERE id = $2`, partnerID, userID)
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

// ClearPairing unsets the pairing pointer on both users in one transaction.
func (s *Store) ClearPairing(ctx context.Context, userID, partnerID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET partner_id = NULL WHERE id = $1`, userID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear pairing: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET partner_id = NULL WHERE id = $1`, partnerID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
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
