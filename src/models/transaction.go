package models

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Transaction is a persisted income or expense record for a user.
// Amount is the magnitude (always >= 0) stored with 2-decimal precision;
// direction is carried by Type. Date is a plain YYYY-MM-DD string.
type Transaction struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	Amount             float64         `json:"amount"`
	Currency           string          `json:"currency"`
	Type               TransactionType `json:"type"`
	Date               string          `json:"date"`
	Description        string          `json:"description"`
	CategoryID         string          `json:"category_id,omitempty"`
	CategoryName       string          `json:"category_name,omitempty"`
	ReceiptURL         string          `json:"receipt_url,omitempty"`
	IsAnomalyDismissed bool            `json:"is_anomaly_dismissed"`

	// ConvertedAmount is the amount expressed in the requesting user's
	// preferred currency. Populated only for display listings.
	ConvertedAmount float64 `json:"converted_amount,omitempty"`
}
