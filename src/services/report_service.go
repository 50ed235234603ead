package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/utils"
)

const (
	ckDashboard    = "agg_dashboard_user_%s"
	ckYearlyReport = "agg_yearly_report_user_%s_year_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type reportServiceImpl struct {
	transactions TransactionReader
	budgets      BudgetLister
	savings      SavingLister
	users        UserGetter
	currency     CurrencyService
	reportCache  *cache.Cache
}

func NewReportService(
	transactions TransactionReader,
	budgets BudgetLister,
	savings SavingLister,
	users UserGetter,
	currency CurrencyService,
	reportCache *cache.Cache,
) ReportService {
	return &reportServiceImpl{
		transactions: transactions,
		budgets:      budgets,
		savings:      savings,
		users:        users,
		currency:     currency,
		reportCache:  reportCache,
	}
}

// DashboardSummary aggregates totals, category breakdowns, budget
// progress, and compiled savings in the user's preferred currency.
// A monthly deficit (expenses beyond income) is deducted from the
// compiled savings figure.
func (s *reportServiceImpl) DashboardSummary(ctx context.Context, userID string) (*models.DashboardSummary, error) {
	cacheKey := fmt.Sprintf(ckDashboard, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.DashboardSummary), nil
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	txs, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	summary := &models.DashboardSummary{
		Currency:           user.Currency,
		CategoryData:       make(map[string]float64),
		IncomeCategoryData: make(map[string]float64),
		BudgetProgress:     []models.BudgetProgress{},
		RecentTransactions: []models.Transaction{},
	}

	spentByCategory := make(map[string]float64)
	for _, t := range txs {
		amt := s.currency.Convert(t.Amount, t.Currency, user.Currency)
		name := t.CategoryName
		if name == "" {
			name = "Other"
		}
		if t.Type == models.TypeIncome {
			summary.TotalIncome += amt
			summary.IncomeCategoryData[name] += amt
		} else {
			summary.TotalExpense += amt
			summary.CategoryData[name] += amt
			if t.CategoryID != "" {
				spentByCategory[t.CategoryID] += amt
			}
		}
	}

	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading budgets: %w", err)
	}
	for _, b := range budgets {
		spent := spentByCategory[b.CategoryID]
		percent := 0.0
		if b.Amount > 0 {
			percent = math.Min((spent/b.Amount)*100, 100)
		}
		summary.BudgetProgress = append(summary.BudgetProgress, models.BudgetProgress{
			Category: b.CategoryName,
			Limit:    b.Amount,
			Spent:    utils.RoundFloat(spent, 2),
			Percent:  utils.RoundFloat(percent, 2),
		})
	}

	rawBalance := summary.TotalIncome - summary.TotalExpense
	summary.Savings = math.Max(0, rawBalance)
	monthlyDeficit := 0.0
	if rawBalance < 0 {
		monthlyDeficit = -rawBalance
	}

	savings, err := s.savings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading savings: %w", err)
	}
	var compiled float64
	for _, sv := range savings {
		compiled += sv.Amount
	}
	summary.TotalSavingsCompiled = math.Max(0, compiled-monthlyDeficit)

	if len(txs) > 5 {
		txs = txs[:5]
	}
	summary.RecentTransactions = txs

	summary.TotalIncome = utils.RoundFloat(summary.TotalIncome, 2)
	summary.TotalExpense = utils.RoundFloat(summary.TotalExpense, 2)

	s.reportCache.Set(cacheKey, summary, cache.DefaultExpiration)
	return summary, nil
}

// YearlyReport breaks the given calendar year down by category and adds a
// six-month trend ending in the current month. Amounts are left in their
// stored currencies' magnitudes, matching the report view.
func (s *reportServiceImpl) YearlyReport(ctx context.Context, userID string, year int) (*models.YearlyReport, error) {
	cacheKey := fmt.Sprintf(ckYearlyReport, userID, year)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.YearlyReport), nil
	}

	txs, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	report := &models.YearlyReport{
		Year:              year,
		IncomeCategories:  make(map[string]float64),
		ExpenseCategories: make(map[string]float64),
	}

	yearPrefix := fmt.Sprintf("%04d-", year)
	for _, t := range txs {
		if !strings.HasPrefix(t.Date, yearPrefix) {
			continue
		}
		name := t.CategoryName
		if name == "" {
			name = "Uncategorized"
		}
		if t.Type == models.TypeIncome {
			report.TotalIncome += t.Amount
			report.IncomeCategories[name] += t.Amount
		} else {
			report.TotalExpense += t.Amount
			report.ExpenseCategories[name] += t.Amount
		}
	}

	// Six-month trend, oldest month first, ending in the current month.
	// Anchor on the first of the month so AddDate cannot skip a short month.
	now := time.Now()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 5; i >= 0; i-- {
		month := anchor.AddDate(0, -i, 0)
		report.Months = append(report.Months, month.Format("Jan"))
		monthPrefix := month.Format("2006-01")

		var income, expense float64
		for _, t := range txs {
			if !strings.HasPrefix(t.Date, monthPrefix) {
				continue
			}
			if t.Type == models.TypeIncome {
				income += t.Amount
			} else {
				expense += t.Amount
			}
		}
		report.MonthIncome = append(report.MonthIncome, utils.RoundFloat(income, 2))
		report.MonthExpense = append(report.MonthExpense, utils.RoundFloat(expense, 2))
	}

	s.reportCache.Set(cacheKey, report, cache.DefaultExpiration)
	return report, nil
}

// InvalidateUserCache drops every cached aggregate for the user. Called
// after any write to their transactions, budgets, or savings.
func (s *reportServiceImpl) InvalidateUserCache(userID string) {
	marker := fmt.Sprintf("_user_%s", userID)
	for key := range s.reportCache.Items() {
		if strings.Contains(key, marker) {
			s.reportCache.Delete(key)
		}
	}
	logger.L.Debug("Report cache invalidated", "userID", userID)
}
