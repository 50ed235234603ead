package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/username/pennywise/backend/src/models"
)

const (
	MaxDescriptionLength  = 1024
	MaxNameLength         = 255
	MaxCurrencyCodeLength = 3
)

var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// ValidateStringNotEmpty checks the string has content after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks the UTF-8 character count against maxLength.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateCurrencyCode checks for a 3-letter ISO-style currency code.
func ValidateCurrencyCode(code string) error {
	if !currencyCodePattern.MatchString(code) {
		return fmt.Errorf("%w: currency code %q must be 3 letters", ErrValidationFailed, code)
	}
	return nil
}

// ValidateAmount checks for a finite, non-negative monetary magnitude.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return fmt.Errorf("%w: amount must be a non-negative number", ErrValidationFailed)
	}
	return nil
}

// ValidateTransactionType checks for income or expense.
func ValidateTransactionType(t string) error {
	switch models.TransactionType(t) {
	case models.TypeIncome, models.TypeExpense:
		return nil
	default:
		return fmt.Errorf("%w: transaction type must be income or expense", ErrValidationFailed)
	}
}
