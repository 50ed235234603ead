package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/username/pennywise/backend/src/models"
)

// BudgetStore provides SQL access to the budgets table.
type BudgetStore struct {
	db *sql.DB
}

func NewBudgetStore(db *sql.DB) *BudgetStore {
	return &BudgetStore{db: db}
}

// ListByUser returns the user's budgets with their category names.
func (s *BudgetStore) ListByUser(ctx context.Context, userID string) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.category_id, c.name, b.amount, b.period, COALESCE(b.description, '')
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE b.user_id = ?
		ORDER BY c.name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.CategoryName, &b.Amount, &b.Period, &b.Description); err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budgets: %w", err)
	}
	return budgets, nil
}

// GetByCategory returns the user's budget for a category, if one exists.
func (s *BudgetStore) GetByCategory(ctx context.Context, userID, categoryID string) (*models.Budget, error) {
	var b models.Budget
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, category_id, amount, period, COALESCE(description, '')
		FROM budgets WHERE user_id = ? AND category_id = ?`, userID, categoryID).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Period, &b.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting budget: %w", err)
	}
	return &b, nil
}

// Upsert creates a budget for the category or replaces the amount and
// description of the existing one. One budget per (user, category).
func (s *BudgetStore) Upsert(ctx context.Context, b *models.Budget) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Period == "" {
		b.Period = "monthly"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, user_id, category_id, amount, period, description)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category_id) DO UPDATE SET
			amount = excluded.amount,
			period = excluded.period,
			description = excluded.description`,
		b.ID, b.UserID, b.CategoryID, b.Amount, b.Period, nullable(b.Description))
	if err != nil {
		return fmt.Errorf("upserting budget: %w", err)
	}
	return nil
}

// Delete removes a budget owned by the user.
func (s *BudgetStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}
	return requireRowAffected(res)
}
