package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/username/pennywise/backend/src/models"
	"github.com/username/pennywise/backend/src/utils"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("record not found")

// TransactionStore provides SQL access to the transactions table.
type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

const transactionColumns = `t.id, t.user_id, t.amount, t.currency, t.type, t.date, t.description,
	t.category_id, COALESCE(c.name, ''), COALESCE(t.receipt_url, ''), t.is_anomaly_dismissed`

func scanTransaction(scanner interface{ Scan(...any) error }) (models.Transaction, error) {
	var tx models.Transaction
	var categoryID sql.NullString
	err := scanner.Scan(
		&tx.ID, &tx.UserID, &tx.Amount, &tx.Currency, &tx.Type, &tx.Date, &tx.Description,
		&categoryID, &tx.CategoryName, &tx.ReceiptURL, &tx.IsAnomalyDismissed,
	)
	if err != nil {
		return tx, err
	}
	if categoryID.Valid {
		tx.CategoryID = categoryID.String
	}
	return tx, nil
}

func (s *TransactionStore) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}
	return txs, nil
}

// ListByUser returns all of a user's transactions, newest first.
func (s *TransactionStore) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?
		ORDER BY t.date DESC, t.created_at DESC`, userID)
}

// ListExpensesByUser returns a user's expense transactions, newest first.
func (s *TransactionStore) ListExpensesByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.type = 'expense'
		ORDER BY t.date DESC, t.created_at DESC`, userID)
}

// ListExpensesForCategoryBetween returns a user's expenses in one category
// with startDate <= date <= endDate (dates are YYYY-MM-DD strings).
func (s *TransactionStore) ListExpensesForCategoryBetween(ctx context.Context, userID, categoryID, startDate, endDate string) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.category_id = ? AND t.type = 'expense'
		  AND t.date >= ? AND t.date <= ?
		ORDER BY t.date DESC`, userID, categoryID, startDate, endDate)
}

// HasMatching reports whether the user already has a transaction with the
// same amount (2 decimals), the same date string, and the same description
// compared case-insensitively. Currency and category are deliberately not
// part of the match.
func (s *TransactionStore) HasMatching(ctx context.Context, userID string, amount float64, date, description string) (bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM transactions
		WHERE user_id = ? AND ROUND(amount, 2) = ROUND(?, 2) AND date = ?
		  AND LOWER(description) = LOWER(TRIM(?))
		LIMIT 1`, userID, amount, date, description).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up matching transaction: %w", err)
	}
	return true, nil
}

// Get returns one transaction scoped to the given user.
func (s *TransactionStore) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = ? AND t.user_id = ?`, id, userID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	return &tx, nil
}

// Insert stores a new transaction. The amount is rounded to 2 decimals and
// a UUID is assigned when the ID is empty.
func (s *TransactionStore) Insert(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.Amount = utils.RoundFloat(tx.Amount, 2)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, currency, type, date, description, category_id, receipt_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Amount, tx.Currency, tx.Type, tx.Date, tx.Description,
		nullable(tx.CategoryID), nullable(tx.ReceiptURL),
	)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

// Update overwrites an existing transaction's editable fields.
func (s *TransactionStore) Update(ctx context.Context, tx *models.Transaction) error {
	tx.Amount = utils.RoundFloat(tx.Amount, 2)
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, currency = ?, type = ?, date = ?, description = ?, category_id = ?, receipt_url = COALESCE(?, receipt_url)
		WHERE id = ? AND user_id = ?`,
		tx.Amount, tx.Currency, tx.Type, tx.Date, tx.Description,
		nullable(tx.CategoryID), nullable(tx.ReceiptURL), tx.ID, tx.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}
	return requireRowAffected(res)
}

// Delete removes a transaction owned by the user.
func (s *TransactionStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return requireRowAffected(res)
}

// SetAnomalyDismissed records that the user reviewed an anomaly flag so the
// detector stops reporting the transaction.
func (s *TransactionStore) SetAnomalyDismissed(ctx context.Context, userID, id string, dismissed bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET is_anomaly_dismissed = ? WHERE id = ? AND user_id = ?`,
		dismissed, id, userID)
	if err != nil {
		return fmt.Errorf("updating anomaly dismissal: %w", err)
	}
	return requireRowAffected(res)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
