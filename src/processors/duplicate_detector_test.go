package processors

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/pennywise/backend/src/models"
)

// fakeMatcher marks descriptions in its set as already stored.
type fakeMatcher struct {
	mu       sync.Mutex
	existing map[string]bool
	failOn   string
	calls    int
}

func (m *fakeMatcher) HasMatching(_ context.Context, _ string, _ float64, _, description string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failOn != "" && strings.EqualFold(description, m.failOn) {
		return false, errors.New("storage unavailable")
	}
	return m.existing[strings.ToLower(description)], nil
}

func TestPartition_SplitsUniqueAndDuplicates(t *testing.T) {
	matcher := &fakeMatcher{existing: map[string]bool{"known payment": true}}
	d := NewDuplicateDetector(matcher)

	staged := []models.StagedTransaction{
		{Date: "2025-05-01", Description: "fresh purchase", Amount: 10},
		{Date: "2025-05-02", Description: "Known Payment", Amount: 20},
		{Date: "2025-05-03", Description: "another fresh one", Amount: 30},
	}

	unique, duplicates := d.Partition(context.Background(), "user-1", staged)

	require.Len(t, unique, 2)
	require.Len(t, duplicates, 1)
	assert.Equal(t, "fresh purchase", unique[0].Description)
	assert.Equal(t, "another fresh one", unique[1].Description)
	assert.Equal(t, "Known Payment", duplicates[0].Description)
	assert.Equal(t, 3, matcher.calls)
}

func TestPartition_UniqueRowsGetNormalizedDates(t *testing.T) {
	d := NewDuplicateDetector(&fakeMatcher{})
	staged := []models.StagedTransaction{
		{Date: "2025/05/01", Description: "slash date", Amount: 5},
		{Date: "1 May 2025", Description: "word date", Amount: 6},
	}

	unique, _ := d.Partition(context.Background(), "user-1", staged)
	require.Len(t, unique, 2)
	assert.Equal(t, "2025-05-01", unique[0].Date)
	assert.Equal(t, "2025-05-01", unique[1].Date)
}

func TestPartition_LookupFailureTreatedAsUnique(t *testing.T) {
	matcher := &fakeMatcher{
		existing: map[string]bool{"flaky row": true},
		failOn:   "flaky row",
	}
	d := NewDuplicateDetector(matcher)
	staged := []models.StagedTransaction{
		{Date: "2025-05-01", Description: "flaky row", Amount: 10},
	}

	unique, duplicates := d.Partition(context.Background(), "user-1", staged)
	assert.Len(t, unique, 1)
	assert.Empty(t, duplicates)
}

func TestPartition_PreservesInputOrder(t *testing.T) {
	matcher := &fakeMatcher{existing: map[string]bool{"dup": true}}
	d := NewDuplicateDetector(matcher)

	var staged []models.StagedTransaction
	for i := 0; i < 50; i++ {
		desc := "row"
		if i%7 == 0 {
			desc = "dup"
		}
		staged = append(staged, models.StagedTransaction{
			Date: "2025-05-01", Description: desc, Amount: float64(i + 1),
		})
	}

	unique, duplicates := d.Partition(context.Background(), "user-1", staged)
	assert.Len(t, unique, 42)
	assert.Len(t, duplicates, 8)

	// Order inside each set must follow the input order.
	var last float64
	for _, tx := range unique {
		assert.Greater(t, tx.Amount, last)
		last = tx.Amount
	}
	last = 0
	for _, tx := range duplicates {
		assert.Greater(t, tx.Amount, last)
		last = tx.Amount
	}
}

func TestPartition_EmptyInput(t *testing.T) {
	d := NewDuplicateDetector(&fakeMatcher{})
	unique, duplicates := d.Partition(context.Background(), "user-1", nil)
	assert.Empty(t, unique)
	assert.Empty(t, duplicates)
}
