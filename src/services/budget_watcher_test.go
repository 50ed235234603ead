package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/pennywise/backend/src/models"
)

type fakeBudgetFinder struct {
	budget *models.Budget
}

func (f *fakeBudgetFinder) GetByCategory(context.Context, string, string) (*models.Budget, error) {
	if f.budget == nil {
		return nil, errors.New("not found")
	}
	return f.budget, nil
}

type fakeExpenseLister struct {
	expenses      []models.Transaction
	lastStartDate string
	lastEndDate   string
}

func (f *fakeExpenseLister) ListExpensesForCategoryBetween(_ context.Context, _, _, startDate, endDate string) ([]models.Transaction, error) {
	f.lastStartDate = startDate
	f.lastEndDate = endDate
	return f.expenses, nil
}

func TestCheckOverrun_UnderBudget(t *testing.T) {
	w := NewBudgetWatcher(
		&fakeBudgetFinder{budget: &models.Budget{Amount: 500}},
		&fakeExpenseLister{expenses: []models.Transaction{
			{Amount: 100, Currency: "USD"},
			{Amount: 150, Currency: "USD"},
		}},
		identityCurrency{},
		"USD",
	)

	over, spent, err := w.CheckOverrun(context.Background(), "user-1", "cat-food", "2025-06-15")
	require.NoError(t, err)
	assert.False(t, over)
	assert.Equal(t, 250.0, spent)
}

func TestCheckOverrun_OverBudget(t *testing.T) {
	w := NewBudgetWatcher(
		&fakeBudgetFinder{budget: &models.Budget{Amount: 200}},
		&fakeExpenseLister{expenses: []models.Transaction{
			{Amount: 150, Currency: "USD"},
			{Amount: 120, Currency: "USD"},
		}},
		identityCurrency{},
		"USD",
	)

	over, spent, err := w.CheckOverrun(context.Background(), "user-1", "cat-food", "2025-06-15")
	require.NoError(t, err)
	assert.True(t, over)
	assert.Equal(t, 270.0, spent)
}

func TestCheckOverrun_MissingBudgetIsNotAnError(t *testing.T) {
	w := NewBudgetWatcher(&fakeBudgetFinder{}, &fakeExpenseLister{}, identityCurrency{}, "USD")

	over, spent, err := w.CheckOverrun(context.Background(), "user-1", "cat-food", "2025-06-15")
	require.NoError(t, err)
	assert.False(t, over)
	assert.Zero(t, spent)
}

func TestCheckOverrun_EmptyCategorySkipped(t *testing.T) {
	w := NewBudgetWatcher(&fakeBudgetFinder{budget: &models.Budget{Amount: 1}}, &fakeExpenseLister{}, identityCurrency{}, "USD")

	over, _, err := w.CheckOverrun(context.Background(), "user-1", "", "2025-06-15")
	require.NoError(t, err)
	assert.False(t, over)
}

func TestCheckOverrun_MonthWindow(t *testing.T) {
	lister := &fakeExpenseLister{}
	w := NewBudgetWatcher(&fakeBudgetFinder{budget: &models.Budget{Amount: 100}}, lister, identityCurrency{}, "USD")

	_, _, err := w.CheckOverrun(context.Background(), "user-1", "cat-food", "2025-02-11")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-01", lister.lastStartDate)
	assert.Equal(t, "2025-02-28", lister.lastEndDate)
}

func TestCheckOverrun_BadDate(t *testing.T) {
	w := NewBudgetWatcher(&fakeBudgetFinder{budget: &models.Budget{Amount: 100}}, &fakeExpenseLister{}, identityCurrency{}, "USD")

	_, _, err := w.CheckOverrun(context.Background(), "user-1", "cat-food", "junk")
	assert.Error(t, err)
}
