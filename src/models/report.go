package models

// BudgetProgress is one budget's spend-vs-limit line on the dashboard.
type BudgetProgress struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
	Spent    float64 `json:"spent"`
	Percent  float64 `json:"percent"`
}

// DashboardSummary aggregates a user's finances for the dashboard view,
// expressed in the user's preferred currency.
type DashboardSummary struct {
	Currency             string             `json:"currency"`
	TotalIncome          float64            `json:"total_income"`
	TotalExpense         float64            `json:"total_expense"`
	Savings              float64            `json:"savings"`
	TotalSavingsCompiled float64            `json:"total_savings_compiled"`
	CategoryData         map[string]float64 `json:"category_data"`
	IncomeCategoryData   map[string]float64 `json:"income_category_data"`
	BudgetProgress       []BudgetProgress   `json:"budget_progress"`
	RecentTransactions   []Transaction      `json:"recent_transactions"`
}

// YearlyReport breaks one calendar year down by category and carries a
// six-month income/expense trend ending in the current month.
type YearlyReport struct {
	Year              int                `json:"year"`
	TotalIncome       float64            `json:"total_income"`
	TotalExpense      float64            `json:"total_expense"`
	IncomeCategories  map[string]float64 `json:"income_categories"`
	ExpenseCategories map[string]float64 `json:"expense_categories"`
	Months            []string           `json:"months"`
	MonthIncome       []float64          `json:"month_income"`
	MonthExpense      []float64          `json:"month_expense"`
}
