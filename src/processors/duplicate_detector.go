package processors

import (
	"context"
	"sync"

	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/utils"
)

// TransactionMatcher looks up whether a user already has a stored
// transaction with the given amount (2 decimals), date string, and
// case-insensitive description.
type TransactionMatcher interface {
	HasMatching(ctx context.Context, userID string, amount float64, date, description string) (bool, error)
}

// DuplicateDetector partitions staged transactions into first-seen rows
// and duplicates of already-stored ones. Currency and category play no
// part in the match.
type DuplicateDetector struct {
	matcher TransactionMatcher
	// maxConcurrent bounds the fan-out of per-row storage lookups.
	maxConcurrent int
}

func NewDuplicateDetector(matcher TransactionMatcher) *DuplicateDetector {
	return &DuplicateDetector{matcher: matcher, maxConcurrent: 8}
}

// Partition checks every staged row against the user's history. The
// lookups are independent and read-only, so they fan out concurrently;
// results keep the input order. A lookup failure is logged and the row
// treated as unique so one storage hiccup cannot swallow an import.
// Every input row lands in exactly one of the two returned sets.
func (d *DuplicateDetector) Partition(ctx context.Context, userID string, staged []models.StagedTransaction) (unique, duplicates []models.StagedTransaction) {
	type rowResult struct {
		normalizedDate string
		isDuplicate    bool
	}
	results := make([]rowResult, len(staged))

	var wg sync.WaitGroup
	sem := make(chan struct{}, d.maxConcurrent)
	for i, tx := range staged {
		wg.Add(1)
		go func(i int, tx models.StagedTransaction) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Best-effort normalization; unparseable dates are compared as-is.
			normalizedDate, _ := normalizeStatementDate(tx.Date)

			found, err := d.matcher.HasMatching(ctx, userID, utils.RoundFloat(tx.Amount, 2), normalizedDate, tx.Description)
			if err != nil {
				logger.FromContext(ctx).Warn("Duplicate lookup failed, treating row as unique",
					"userID", userID, "date", normalizedDate, "error", err)
				found = false
			}
			results[i] = rowResult{normalizedDate: normalizedDate, isDuplicate: found}
		}(i, tx)
	}
	wg.Wait()

	for i, tx := range staged {
		if results[i].isDuplicate {
			duplicates = append(duplicates, tx)
			continue
		}
		tx.Date = results[i].normalizedDate
		unique = append(unique, tx)
	}
	return unique, duplicates
}
