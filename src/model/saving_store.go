package model

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/username/pennywise/backend/src/models"
)

// SavingStore provides SQL access to the savings and saving_plans tables.
type SavingStore struct {
	db *sql.DB
}

func NewSavingStore(db *sql.DB) *SavingStore {
	return &SavingStore{db: db}
}

// ListByUser returns the user's saving pots.
func (s *SavingStore) ListByUser(ctx context.Context, userID string) ([]models.Saving, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, source, amount, COALESCE(description, ''), is_primary
		FROM savings WHERE user_id = ?
		ORDER BY is_primary DESC, source COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying savings: %w", err)
	}
	defer rows.Close()

	var savings []models.Saving
	for rows.Next() {
		var sv models.Saving
		if err := rows.Scan(&sv.ID, &sv.UserID, &sv.Source, &sv.Amount, &sv.Description, &sv.IsPrimary); err != nil {
			return nil, fmt.Errorf("scanning saving: %w", err)
		}
		savings = append(savings, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating savings: %w", err)
	}
	return savings, nil
}

// Insert creates a saving pot. Marking it primary demotes any existing primary.
func (s *SavingStore) Insert(ctx context.Context, sv *models.Saving) error {
	if sv.ID == "" {
		sv.ID = uuid.NewString()
	}
	if sv.IsPrimary {
		if err := s.clearPrimary(ctx, sv.UserID); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO savings (id, user_id, source, amount, description, is_primary)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.UserID, sv.Source, sv.Amount, nullable(sv.Description), sv.IsPrimary)
	if err != nil {
		return fmt.Errorf("inserting saving: %w", err)
	}
	return nil
}

// Update overwrites a saving pot's fields.
func (s *SavingStore) Update(ctx context.Context, sv *models.Saving) error {
	if sv.IsPrimary {
		if err := s.clearPrimary(ctx, sv.UserID); err != nil {
			return err
		}
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE savings SET source = ?, amount = ?, description = ?, is_primary = ?
		WHERE id = ? AND user_id = ?`,
		sv.Source, sv.Amount, nullable(sv.Description), sv.IsPrimary, sv.ID, sv.UserID)
	if err != nil {
		return fmt.Errorf("updating saving: %w", err)
	}
	return requireRowAffected(res)
}

// SetPrimary makes the given pot the single primary one for the user.
func (s *SavingStore) SetPrimary(ctx context.Context, userID, id string) error {
	if err := s.clearPrimary(ctx, userID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE savings SET is_primary = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("setting primary saving: %w", err)
	}
	return requireRowAffected(res)
}

// Delete removes a saving pot owned by the user.
func (s *SavingStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM savings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting saving: %w", err)
	}
	return requireRowAffected(res)
}

func (s *SavingStore) clearPrimary(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE savings SET is_primary = 0 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clearing primary saving: %w", err)
	}
	return nil
}

// ListPlansByUser returns the user's saving plans.
func (s *SavingStore) ListPlansByUser(ctx context.Context, userID string) ([]models.SavingPlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, goal_name, target_amount, COALESCE(month, ''), is_completed
		FROM saving_plans WHERE user_id = ?
		ORDER BY month, goal_name COLLATE NOCASE`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying saving plans: %w", err)
	}
	defer rows.Close()

	var plans []models.SavingPlan
	for rows.Next() {
		var p models.SavingPlan
		if err := rows.Scan(&p.ID, &p.UserID, &p.GoalName, &p.TargetAmount, &p.Month, &p.IsCompleted); err != nil {
			return nil, fmt.Errorf("scanning saving plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating saving plans: %w", err)
	}
	return plans, nil
}

// InsertPlan creates a saving plan.
func (s *SavingStore) InsertPlan(ctx context.Context, p *models.SavingPlan) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saving_plans (id, user_id, goal_name, target_amount, month, is_completed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.GoalName, p.TargetAmount, nullable(p.Month), p.IsCompleted)
	if err != nil {
		return fmt.Errorf("inserting saving plan: %w", err)
	}
	return nil
}

// TogglePlan flips a plan's completion flag.
func (s *SavingStore) TogglePlan(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE saving_plans SET is_completed = NOT is_completed
		WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("toggling saving plan: %w", err)
	}
	return requireRowAffected(res)
}

// DeletePlan removes a saving plan owned by the user.
func (s *SavingStore) DeletePlan(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saving_plans WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting saving plan: %w", err)
	}
	return requireRowAffected(res)
}
