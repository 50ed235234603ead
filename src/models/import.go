package models

// ImportRow is one parsed row of an uploaded statement: a mapping from
// column header to cell value that preserves the file's natural column
// order. Header names are whatever the bank export uses; nothing about
// the set is fixed.
type ImportRow struct {
	Headers []string
	Values  map[string]string
}

// Get returns the cell under the given header, or "" if the column is absent.
func (r ImportRow) Get(header string) string {
	return r.Values[header]
}

// StagedTransaction is a candidate transaction produced by the import
// pipeline. It is never persisted until the user confirms it.
type StagedTransaction struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	// CategoryHint is the raw category column from the source file, if any.
	// It is used only as classifier input.
	CategoryHint string `json:"category_hint,omitempty"`
	// CategoryID is filled in by the classifier; empty when no strategy matched.
	CategoryID string `json:"category_id,omitempty"`
	Currency   string `json:"currency"`
}

// ImportResult is what an upload produces: staged rows partitioned into
// first-seen transactions and duplicates of already-stored ones, plus a
// session token the confirmation call must present.
type ImportResult struct {
	SessionID          string              `json:"session_id"`
	UniqueTransactions []StagedTransaction `json:"unique_transactions"`
	Duplicates         []StagedTransaction `json:"duplicates"`
}

// ImportSelection marks one staged row of the unique set for committal.
// Index refers to the position in ImportResult.UniqueTransactions.
// CategoryID overrides the classifier's assignment when non-empty.
type ImportSelection struct {
	Index      int    `json:"index"`
	Active     bool   `json:"active"`
	CategoryID string `json:"category_id,omitempty"`
}
