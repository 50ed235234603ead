package models

import "time"

// User carries the profile fields the tracker needs. Authentication is
// handled upstream of this service.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Budget is a per-category monthly spending limit, expressed in the
// application base currency.
type Budget struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name,omitempty"`
	Amount       float64 `json:"amount"`
	Period       string  `json:"period"`
	Description  string  `json:"description,omitempty"`
}

// Saving is a pot of money held outside the transaction ledger
// (fixed deposit, shares, a bank account, ...). At most one saving per
// user is primary; monthly deficits are deducted from the primary pot
// for display.
type Saving struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Source      string  `json:"source"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	IsPrimary   bool    `json:"is_primary"`
}

// SavingPlan is a monthly savings goal the user can tick off.
type SavingPlan struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	GoalName     string  `json:"goal_name"`
	TargetAmount float64 `json:"target_amount"`
	Month        string  `json:"month,omitempty"`
	IsCompleted  bool    `json:"is_completed"`
}
