package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/parsers"
	"github.com/username/pennywise/backend/src/processors"
)

type fakeTransactionWriter struct {
	inserted []models.Transaction
	failOn   string
}

func (f *fakeTransactionWriter) Insert(_ context.Context, tx *models.Transaction) error {
	if f.failOn != "" && tx.Description == f.failOn {
		return errors.New("insert failed")
	}
	f.inserted = append(f.inserted, *tx)
	return nil
}

type fakeCategoryLister struct {
	categories []models.Category
}

func (f *fakeCategoryLister) ListForUser(context.Context, string) ([]models.Category, error) {
	return f.categories, nil
}

type fakeUserGetter struct {
	user *models.User
}

func (f *fakeUserGetter) Get(context.Context, string) (*models.User, error) {
	if f.user == nil {
		return nil, errors.New("user not found")
	}
	return f.user, nil
}

type neverMatches struct{}

func (neverMatches) HasMatching(context.Context, string, float64, string, string) (bool, error) {
	return false, nil
}

type alwaysMatches struct{}

func (alwaysMatches) HasMatching(context.Context, string, float64, string, string) (bool, error) {
	return true, nil
}

func newTestImportService(writer *fakeTransactionWriter, matcher processors.TransactionMatcher, onCommit func(string)) ImportService {
	return NewImportService(
		processors.NewStatementProcessor(),
		processors.NewCategoryClassifier(),
		processors.NewDuplicateDetector(matcher),
		writer,
		&fakeCategoryLister{categories: []models.Category{
			{ID: "cat-food", Name: "Food", Type: models.TypeExpense},
			{ID: "cat-salary", Name: "Salary", Type: models.TypeIncome},
		}},
		&fakeUserGetter{user: &models.User{ID: "user-1", Currency: "USD"}},
		cache.New(time.Minute, time.Minute),
		time.Minute,
		onCommit,
	)
}

const sampleStatement = `Date,Description,Debit,Credit
2025-06-01,STARBUCKS #1234,5.75,
2025-06-02,ACME CORP SALARY,,2500.00
2025-06-03,Opening Balance,,
`

func TestRunImport_StagesClassifiedTransactions(t *testing.T) {
	svc := newTestImportService(&fakeTransactionWriter{}, neverMatches{}, nil)

	result, err := svc.RunImport(context.Background(), "user-1", strings.NewReader(sampleStatement), "text/csv")
	require.NoError(t, err)
	require.NotEmpty(t, result.SessionID)
	require.Len(t, result.UniqueTransactions, 2, "the zero-amount balance row is dropped")
	assert.Empty(t, result.Duplicates)

	coffee := result.UniqueTransactions[0]
	assert.Equal(t, "2025-06-01", coffee.Date)
	assert.Equal(t, 5.75, coffee.Amount)
	assert.Equal(t, models.TypeExpense, coffee.Type)
	assert.Equal(t, "cat-food", coffee.CategoryID, "starbucks keyword maps to Food")
	assert.Equal(t, "USD", coffee.Currency)

	salary := result.UniqueTransactions[1]
	assert.Equal(t, models.TypeIncome, salary.Type)
	assert.Equal(t, "cat-salary", salary.CategoryID)
}

func TestRunImport_DuplicatesPartitioned(t *testing.T) {
	svc := newTestImportService(&fakeTransactionWriter{}, alwaysMatches{}, nil)

	result, err := svc.RunImport(context.Background(), "user-1", strings.NewReader(sampleStatement), "text/csv")
	require.NoError(t, err)
	assert.Empty(t, result.UniqueTransactions)
	assert.Len(t, result.Duplicates, 2)
}

func TestRunImport_UnsupportedFormat(t *testing.T) {
	svc := newTestImportService(&fakeTransactionWriter{}, neverMatches{}, nil)

	_, err := svc.RunImport(context.Background(), "user-1", strings.NewReader("x"), "application/pdf")
	assert.ErrorIs(t, err, parsers.ErrUnsupportedFormat)
}

func TestRunImport_EmptyFile(t *testing.T) {
	svc := newTestImportService(&fakeTransactionWriter{}, neverMatches{}, nil)

	_, err := svc.RunImport(context.Background(), "user-1", strings.NewReader("Date,Description,Amount\n"), "text/csv")
	assert.ErrorIs(t, err, ErrNoTransactionsFound)
}

func TestRunImport_OnlyZeroAmountRows(t *testing.T) {
	svc := newTestImportService(&fakeTransactionWriter{}, neverMatches{}, nil)

	body := "Date,Description,Amount\n2025-06-01,Section Header,\n"
	_, err := svc.RunImport(context.Background(), "user-1", strings.NewReader(body), "text/csv")
	assert.ErrorIs(t, err, ErrNoTransactionsFound)
}

func TestConfirmImport_PersistsSelectedRows(t *testing.T) {
	writer := &fakeTransactionWriter{}
	var invalidated []string
	svc := newTestImportService(writer, neverMatches{}, func(userID string) {
		invalidated = append(invalidated, userID)
	})

	result, err := svc.RunImport(context.Background(), "user-1", strings.NewReader(sampleStatement), "text/csv")
	require.NoError(t, err)

	imported, err := svc.ConfirmImport(context.Background(), "user-1", result.SessionID, []models.ImportSelection{
		{Index: 0, Active: true, CategoryID: "cat-override"},
		{Index: 1, Active: false},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	require.Len(t, writer.inserted, 1)
	assert.Equal(t, "STARBUCKS #1234", writer.inserted[0].Description)
	assert.Equal(t, "cat-override", writer.inserted[0].CategoryID, "selection override beats the classifier")
	assert.Equal(t, []string{"user-1"}, invalidated)
}

func TestConfirmImport_SessionConsumedAfterCommit(t *testing.T) {
	svc := newTestImportService(&fakeTransactionWriter{}, neverMatches{}, nil)

	result, err := svc.RunImport(context.Background(), "user-1", strings.NewReader(sampleStatement), "text/csv")
	require.NoError(t, err)

	_, err = svc.ConfirmImport(context.Background(), "user-1", result.SessionID, nil)
	require.NoError(t, err)

	_, err = svc.ConfirmImport(context.Background(), "user-1", result.SessionID, nil)
	assert.ErrorIs(t, err, ErrImportSessionExpired)
}

func TestConfirmImport_WrongUserRejected(t *testing.T) {
	svc := newTestImportService(&fakeTransactionWriter{}, neverMatches{}, nil)

	result, err := svc.RunImport(context.Background(), "user-1", strings.NewReader(sampleStatement), "text/csv")
	require.NoError(t, err)

	_, err = svc.ConfirmImport(context.Background(), "someone-else", result.SessionID, []models.ImportSelection{
		{Index: 0, Active: true},
	})
	assert.ErrorIs(t, err, ErrImportSessionExpired)
}

func TestConfirmImport_OutOfRangeIndexSkipped(t *testing.T) {
	writer := &fakeTransactionWriter{}
	svc := newTestImportService(writer, neverMatches{}, nil)

	result, err := svc.RunImport(context.Background(), "user-1", strings.NewReader(sampleStatement), "text/csv")
	require.NoError(t, err)

	imported, err := svc.ConfirmImport(context.Background(), "user-1", result.SessionID, []models.ImportSelection{
		{Index: -1, Active: true},
		{Index: 99, Active: true},
		{Index: 1, Active: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Len(t, writer.inserted, 1)
}

func TestConfirmImport_DefusesFormulaDescriptions(t *testing.T) {
	writer := &fakeTransactionWriter{}
	svc := newTestImportService(writer, neverMatches{}, nil)

	body := "Date,Description,Debit\n2025-06-01,=HYPERLINK(evil),9.99\n"
	result, err := svc.RunImport(context.Background(), "user-1", strings.NewReader(body), "text/csv")
	require.NoError(t, err)

	_, err = svc.ConfirmImport(context.Background(), "user-1", result.SessionID, []models.ImportSelection{
		{Index: 0, Active: true},
	})
	require.NoError(t, err)
	require.Len(t, writer.inserted, 1)
	assert.Equal(t, "'=HYPERLINK(evil)", writer.inserted[0].Description)
}

func TestConfirmImport_InsertFailureSkipsRow(t *testing.T) {
	writer := &fakeTransactionWriter{failOn: "STARBUCKS #1234"}
	svc := newTestImportService(writer, neverMatches{}, nil)

	result, err := svc.RunImport(context.Background(), "user-1", strings.NewReader(sampleStatement), "text/csv")
	require.NoError(t, err)

	imported, err := svc.ConfirmImport(context.Background(), "user-1", result.SessionID, []models.ImportSelection{
		{Index: 0, Active: true},
		{Index: 1, Active: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
}
