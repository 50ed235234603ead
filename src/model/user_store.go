package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/username/pennywise/backend/src/models"
)

// UserStore provides SQL access to the users table. Authentication lives
// upstream; only profile fields are managed here.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Get returns a user by ID.
func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, currency, created_at, updated_at
		FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Currency, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// Insert creates a user record.
func (s *UserStore) Insert(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Currency == "" {
		u.Currency = "USD"
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Currency, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// UpdateCurrency changes the user's preferred display currency.
func (s *UserStore) UpdateCurrency(ctx context.Context, userID, currency string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET currency = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		strings.ToUpper(currency), userID)
	if err != nil {
		return fmt.Errorf("updating user currency: %w", err)
	}
	return requireRowAffected(res)
}

// UpdateProfile changes the user's name and email.
func (s *UserStore) UpdateProfile(ctx context.Context, userID, name, email string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = ?, email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, email, userID)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}
	return requireRowAffected(res)
}
