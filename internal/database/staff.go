package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Staff roles
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// StaffUser is a staff account
type StaffUser struct {
	ID           string   `db:"id" json:"id"`
	Username     string   `db:"username" json:"username"`
	Email        string   `db:"email" json:"email"`
	PasswordHash string   `db:"password_hash" json:"-"`
	Role         string   `db:"role" json:"role"`
	CreatedAt    NullTime `db:"created_at" json:"created_at"`
}

// CreateStaffUser inserts a staff account.
// Returns ErrUsernameTaken or ErrEmailTaken on collisions.
func (db *DB) CreateStaffUser(ctx context.Context, username, email, passwordHash, role string) (*StaffUser, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	if err := db.ensureTable(ctx, TableStaffUsers); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	err := db.Transaction(ctx, func(tx *sqlx.Tx) error {
		taken, err := staffFieldTaken(ctx, tx, "username", username)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}

		taken, err = staffFieldTaken(ctx, tx, "email", email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO staff_users (id, username, email, password_hash, role) VALUES (?, ?, ?, ?, ?)
		`, id, username, email, passwordHash, role); err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to create staff user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return db.getStaffUser(ctx, "id", id)
}

// GetStaffUserByUsername retrieves a staff account by username.
// Returns nil, nil if none exists.
func (db *DB) GetStaffUserByUsername(ctx context.Context, username string) (*StaffUser, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()
	return db.getStaffUser(ctx, "username", username)
}

func (db *DB) getStaffUser(ctx context.Context, column, value string) (*StaffUser, error) {
	user := &StaffUser{}
	// column is one of a fixed set chosen by the callers above
	err := db.GetContext(ctx, user, `
		SELECT id, username, email, password_hash, role, created_at
		FROM staff_users WHERE `+column+` = ? LIMIT 1
	`, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff user: %w", err)
	}
	return user, nil
}

func staffFieldTaken(ctx context.Context, tx *sqlx.Tx, column, value string) (bool, error) {
	var id string
	err := tx.GetContext(ctx, &id, `SELECT id FROM staff_users WHERE `+column+` = ? LIMIT 1`, value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check staff %s: %w", column, err)
	}
	return true, nil
}
