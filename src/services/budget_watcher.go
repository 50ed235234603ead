package services

import (
	"context"
	"fmt"
	"time"

	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/utils"
)

// CategoryExpenseLister fetches a user's expenses for one category inside
// a date window.
type CategoryExpenseLister interface {
	ListExpensesForCategoryBetween(ctx context.Context, userID, categoryID, startDate, endDate string) ([]models.Transaction, error)
}

// BudgetFinder fetches the user's budget for a category, if any.
type BudgetFinder interface {
	GetByCategory(ctx context.Context, userID, categoryID string) (*models.Budget, error)
}

// BudgetWatcher checks whether an expense pushed its category over the
// monthly budget. Budgets are stored in the base currency, so every
// expense is converted before summing. Overruns are logged; notification
// delivery happens outside this service.
type BudgetWatcher struct {
	budgets      BudgetFinder
	expenses     CategoryExpenseLister
	currency     CurrencyService
	baseCurrency string
}

func NewBudgetWatcher(budgets BudgetFinder, expenses CategoryExpenseLister, currency CurrencyService, baseCurrency string) *BudgetWatcher {
	return &BudgetWatcher{
		budgets:      budgets,
		expenses:     expenses,
		currency:     currency,
		baseCurrency: baseCurrency,
	}
}

// CheckOverrun reports whether the month containing date has blown the
// category's budget, returning the total spent in the base currency.
// A missing budget is not an error.
func (w *BudgetWatcher) CheckOverrun(ctx context.Context, userID, categoryID, date string) (bool, float64, error) {
	if categoryID == "" {
		return false, 0, nil
	}
	budget, err := w.budgets.GetByCategory(ctx, userID, categoryID)
	if err != nil {
		return false, 0, nil // no budget set for the category
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false, 0, fmt.Errorf("parsing transaction date %q: %w", date, err)
	}
	startOfMonth := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	endOfMonth := startOfMonth.AddDate(0, 1, -1)

	expenses, err := w.expenses.ListExpensesForCategoryBetween(ctx, userID, categoryID,
		startOfMonth.Format("2006-01-02"), endOfMonth.Format("2006-01-02"))
	if err != nil {
		return false, 0, fmt.Errorf("loading month expenses: %w", err)
	}

	var totalSpent float64
	for _, t := range expenses {
		totalSpent += w.currency.Convert(t.Amount, t.Currency, w.baseCurrency)
	}
	totalSpent = utils.RoundFloat(totalSpent, 2)

	if totalSpent > budget.Amount {
		logger.FromContext(ctx).Warn("Budget exceeded",
			"userID", userID, "categoryID", categoryID,
			"limit", budget.Amount, "spent", totalSpent, "currency", w.baseCurrency)
		return true, totalSpent, nil
	}
	return false, totalSpent, nil
}
