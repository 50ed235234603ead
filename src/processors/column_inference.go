// Package processors contains the statement-import pipeline: column
// inference over unknown bank-export layouts, amount normalization,
// category classification, and duplicate detection.
package processors

import (
	"strings"

	"github.com/username/pennywise/backend/src/models"
)

// ColumnMap records which source header fills each semantic slot.
// An empty string means no header matched the slot.
type ColumnMap struct {
	Date        string
	Description string
	Category    string
	Debit       string
	Credit      string
	Amount      string
}

// Ordered candidate terms per slot. Order matters only across headers:
// the first header (in the file's natural column order) satisfying any
// term claims the slot.
var (
	dateTerms        = []string{"date", "time"}
	descriptionTerms = []string{"desc", "particulars", "remarks", "trans"}
	categoryTerms    = []string{"category", "group", "tag"}
	debitTerms       = []string{"debit", "dr", "withdrawal", "paid out", "spending", "spent"}
	creditTerms      = []string{"credit", "cr", "deposit", "paid in", "income", "earned"}
	amountTerms      = []string{"amount", "value", "total", "amt"}
)

// Headers containing these words are rejected for long-term substring
// matches so that e.g. "Category Date" cannot satisfy the description
// slot via "trans" in "transaction date". A guard never disqualifies the
// term that equals it, otherwise a plain "Date" header could not fill
// the date slot.
var exclusionGuards = []string{"date", "category", "balance"}

// InferColumns scans one parsed row's headers and assigns each semantic
// slot the first header that satisfies any of its terms. Slots are
// searched independently: a header claimed by one slot remains a
// candidate for every other slot.
func InferColumns(row models.ImportRow) ColumnMap {
	return ColumnMap{
		Date:        findColumn(row.Headers, dateTerms),
		Description: findColumn(row.Headers, descriptionTerms),
		Category:    findColumn(row.Headers, categoryTerms),
		Debit:       findColumn(row.Headers, debitTerms),
		Credit:      findColumn(row.Headers, creditTerms),
		Amount:      findColumn(row.Headers, amountTerms),
	}
}

func findColumn(headers, terms []string) string {
	for _, header := range headers {
		normalized := strings.ToLower(strings.TrimSpace(header))
		for _, term := range terms {
			if headerMatchesTerm(normalized, term) {
				return header
			}
		}
	}
	return ""
}

// headerMatchesTerm applies the two matching regimes. Short terms such as
// "dr" and "cr" only match exactly or as a standalone space-bounded token,
// so "address" cannot claim the debit slot. Longer terms match as
// substrings, subject to the exclusion guards.
func headerMatchesTerm(header, term string) bool {
	if len(term) <= 2 {
		if header == term {
			return true
		}
		return strings.Contains(" "+header+" ", " "+term+" ")
	}
	if !strings.Contains(header, term) {
		return false
	}
	for _, guard := range exclusionGuards {
		if guard == term {
			continue
		}
		if strings.Contains(header, guard) {
			return false
		}
	}
	return true
}
