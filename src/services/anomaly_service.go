package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/username/pennywise/backend/src/models"
)

const (
	// minHistoryForDetection is the floor under which no flags are
	// produced at all; smaller samples are statistically meaningless.
	minHistoryForDetection = 5
	// minCategorySample is the per-category floor for the spike check.
	minCategorySample = 3
	// spikeThreshold and highSeverityThreshold are z-score cutoffs.
	spikeThreshold        = 2.2
	highSeverityThreshold = 4.0
	// frequencyClusterSize is the number of same-day siblings (excluding
	// the transaction itself) that makes a cluster.
	frequencyClusterSize = 2

	uncategorizedBucket = "uncategorized"
)

// TransactionDismisser records that a user reviewed an anomaly.
type TransactionDismisser interface {
	SetAnomalyDismissed(ctx context.Context, userID, id string, dismissed bool) error
}

type anomalyServiceImpl struct {
	transactions TransactionReader
	dismisser    TransactionDismisser
}

func NewAnomalyService(transactions TransactionReader, dismisser TransactionDismisser) AnomalyService {
	return &anomalyServiceImpl{transactions: transactions, dismisser: dismisser}
}

// DetectAnomalies flags a user's non-dismissed expenses that spike above
// their category's spending distribution, or that cluster on the same day
// with an identical description. The baseline deliberately includes the
// transaction under test, mirroring how the statistics were originally
// tuned. Each transaction gets at most one flag; the spike check wins.
func (s *anomalyServiceImpl) DetectAnomalies(ctx context.Context, userID string) ([]models.AnomalyFlag, error) {
	all, err := s.transactions.ListExpensesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading expense history: %w", err)
	}
	if len(all) < minHistoryForDetection {
		return nil, nil
	}

	// Baselines are built from the full history, dismissed rows included.
	categoryAmounts := make(map[string][]float64)
	for _, t := range all {
		bucket := categoryBucket(t)
		categoryAmounts[bucket] = append(categoryAmounts[bucket], t.Amount)
	}

	var flags []models.AnomalyFlag
	for _, t := range all {
		if t.IsAnomalyDismissed {
			continue
		}

		amounts := categoryAmounts[categoryBucket(t)]
		if len(amounts) >= minCategorySample {
			mean, stddev := meanStddev(amounts)
			z := 0.0
			if stddev != 0 {
				z = (t.Amount - mean) / stddev
			}
			if z > spikeThreshold {
				severity := models.SeverityMedium
				if z > highSeverityThreshold {
					severity = models.SeverityHigh
				}
				flags = append(flags, models.AnomalyFlag{
					Transaction: t,
					Reason: fmt.Sprintf("Unusual Spike: this is significantly higher than your typical %s spending (avg %.2f)",
						categoryLabel(t), mean),
					Severity: severity,
				})
				continue // at most one flag per transaction
			}
		}

		if countSameDaySiblings(all, t) >= frequencyClusterSize {
			flags = append(flags, models.AnomalyFlag{
				Transaction: t,
				Reason:      fmt.Sprintf("Frequency Cluster: multiple transactions at %q on the same day", t.Description),
				Severity:    models.SeverityMedium,
			})
		}
	}

	sort.SliceStable(flags, func(i, j int) bool {
		return flags[i].Transaction.Date > flags[j].Transaction.Date
	})
	return flags, nil
}

// DismissAnomaly marks the transaction so it is never flagged again.
func (s *anomalyServiceImpl) DismissAnomaly(ctx context.Context, userID, transactionID string) error {
	return s.dismisser.SetAnomalyDismissed(ctx, userID, transactionID, true)
}

func categoryBucket(t models.Transaction) string {
	if t.CategoryID == "" {
		return uncategorizedBucket
	}
	return t.CategoryID
}

func categoryLabel(t models.Transaction) string {
	if t.CategoryName == "" {
		return uncategorizedBucket
	}
	return t.CategoryName
}

// meanStddev computes the arithmetic mean and population standard
// deviation of the sample.
func meanStddev(amounts []float64) (float64, float64) {
	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))

	var sumSquares float64
	for _, a := range amounts {
		diff := a - mean
		sumSquares += diff * diff
	}
	return mean, math.Sqrt(sumSquares / float64(len(amounts)))
}

func countSameDaySiblings(all []models.Transaction, t models.Transaction) int {
	count := 0
	for _, other := range all {
		if other.ID == t.ID {
			continue
		}
		if other.Date == t.Date && strings.EqualFold(other.Description, t.Description) {
			count++
		}
	}
	return count
}
