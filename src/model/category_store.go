package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/username/pennywise/backend/src/models"
)

// CategoryStore provides SQL access to the categories table.
type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// ListForUser returns the user's own categories plus the shared defaults
// (user_id NULL), ordered by name.
func (s *CategoryStore) ListForUser(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, COALESCE(user_id, '')
		FROM categories
		WHERE user_id = ? OR user_id IS NULL
		ORDER BY name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.UserID); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return cats, nil
}

// ListExpenseForUser returns only the expense categories visible to the user.
func (s *CategoryStore) ListExpenseForUser(ctx context.Context, userID string) ([]models.Category, error) {
	all, err := s.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var expense []models.Category
	for _, c := range all {
		if c.Type == models.TypeExpense {
			expense = append(expense, c)
		}
	}
	return expense, nil
}

// Get returns a category visible to the user (own or shared).
func (s *CategoryStore) Get(ctx context.Context, userID, id string) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, COALESCE(user_id, '')
		FROM categories
		WHERE id = ? AND (user_id = ? OR user_id IS NULL)`, id, userID).
		Scan(&c.ID, &c.Name, &c.Type, &c.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return &c, nil
}

// Insert creates a user-owned category.
func (s *CategoryStore) Insert(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, type, user_id) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Type, nullable(c.UserID))
	if err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}
