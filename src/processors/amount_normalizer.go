package processors

import (
	"math"
	"strconv"
	"strings"

	"github.com/username/pennywise/backend/src/models"
)

// parseCellAmount extracts a number from a raw statement cell. Everything
// except digits, the decimal point, and a minus sign is stripped, so
// "$1,234.50" and "1 234.50 USD" both parse. Empty or unparseable cells
// yield 0.
func parseCellAmount(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// NormalizeAmount resolves the inferred debit/credit/amount cells of a row
// into a signed-free magnitude and a transaction direction. The first
// non-zero cell wins, in debit -> credit -> generic-amount order.
//
// Sign conventions tolerate reversal rows that bank exports encode with
// an inverted sign: a negative value in a debit column is money coming
// back in, while a negative credit or generic amount is money going out.
// A zero magnitude means the row carried no usable amount; callers drop
// such rows before staging.
func NormalizeAmount(cols ColumnMap, row models.ImportRow) (float64, models.TransactionType) {
	debit := parseCellAmount(row.Get(cols.Debit))
	credit := parseCellAmount(row.Get(cols.Credit))
	amount := parseCellAmount(row.Get(cols.Amount))

	switch {
	case debit != 0:
		if debit < 0 {
			return math.Abs(debit), models.TypeIncome
		}
		return debit, models.TypeExpense
	case credit != 0:
		if credit < 0 {
			return math.Abs(credit), models.TypeExpense
		}
		return credit, models.TypeIncome
	case amount != 0:
		if amount < 0 {
			return math.Abs(amount), models.TypeExpense
		}
		return amount, models.TypeIncome
	default:
		return 0, models.TypeExpense
	}
}
