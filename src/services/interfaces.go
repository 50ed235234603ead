package services

import (
	"context"
	"io"

	"github.com/username/pennywise/backend/src/models"
)

// CurrencyService converts amounts between currencies using a cached
// USD-based rate table. Both methods fail open and never return errors;
// a broken rate source degrades to stale or fallback rates.
type CurrencyService interface {
	GetRates() models.RateTable
	Convert(amount float64, from, to string) float64
}

// ImportService runs the statement-import pipeline and commits the rows
// the user confirmed.
type ImportService interface {
	RunImport(ctx context.Context, userID string, file io.Reader, mimeHint string) (*models.ImportResult, error)
	ConfirmImport(ctx context.Context, userID, sessionID string, selections []models.ImportSelection) (int, error)
}

// AnomalyService flags statistically unusual stored expenses.
type AnomalyService interface {
	DetectAnomalies(ctx context.Context, userID string) ([]models.AnomalyFlag, error)
	DismissAnomaly(ctx context.Context, userID, transactionID string) error
}

// ReportService assembles aggregated views over a user's data.
type ReportService interface {
	DashboardSummary(ctx context.Context, userID string) (*models.DashboardSummary, error)
	YearlyReport(ctx context.Context, userID string, year int) (*models.YearlyReport, error)
	InvalidateUserCache(userID string)
}

// Narrow store contracts the services depend on; src/model satisfies all
// of them, tests substitute fakes.

type TransactionReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	ListExpensesByUser(ctx context.Context, userID string) ([]models.Transaction, error)
}

type TransactionWriter interface {
	Insert(ctx context.Context, tx *models.Transaction) error
}

type CategoryLister interface {
	ListForUser(ctx context.Context, userID string) ([]models.Category, error)
}

type UserGetter interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

type BudgetLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.Budget, error)
}

type SavingLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.Saving, error)
}
