package models

// Anomaly severities.
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// AnomalyFlag marks a stored expense transaction as statistically unusual.
// Flags are recomputed per request and never persisted; dismissal is
// recorded on the transaction itself.
type AnomalyFlag struct {
	Transaction Transaction `json:"transaction"`
	Reason      string      `json:"reason"`
	Severity    string      `json:"severity"`
}

// RateTable maps a lowercase ISO currency code to the number of units of
// that currency one USD buys.
type RateTable map[string]float64
