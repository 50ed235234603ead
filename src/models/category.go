package models

// Category is a transaction grouping owned by a user, or shared by all
// users when UserID is empty. Name matching is case-insensitive throughout
// the classifier and the stores.
type Category struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Type   TransactionType `json:"type"`
	UserID string          `json:"user_id,omitempty"`
}
