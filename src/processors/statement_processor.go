package processors

import (
	"strings"
	"time"

	"github.com/username/pennywise/backend/src/models"
)

// DefaultDescription is staged when the source file has no usable
// description cell.
const DefaultDescription = "Imported Transaction"

// Date layouts bank exports commonly use, tried in order.
var statementDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// normalizeStatementDate best-effort parses a statement date and returns
// it as YYYY-MM-DD. On failure the original string is returned unmodified
// with ok=false.
func normalizeStatementDate(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range statementDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return raw, false
}

// StatementProcessor turns parsed statement rows into staged transactions
// via column inference and amount normalization.
type StatementProcessor struct {
	// now is stubbed in tests; defaults to time.Now.
	now func() time.Time
}

func NewStatementProcessor() *StatementProcessor {
	return &StatementProcessor{now: time.Now}
}

// Process stages every row that carries a non-zero amount. Rows whose
// debit, credit, and amount cells are all zero or unparseable are treated
// as non-transactions (opening-balance lines, section headers) and
// dropped. The statement is assumed to be in the importing user's
// preferred currency; no FX inference is attempted here.
func (p *StatementProcessor) Process(rows []models.ImportRow, currency string) []models.StagedTransaction {
	var staged []models.StagedTransaction
	for _, row := range rows {
		cols := InferColumns(row)
		amount, txType := NormalizeAmount(cols, row)
		if amount == 0 {
			continue
		}

		staged = append(staged, models.StagedTransaction{
			Date:         p.resolveDate(row.Get(cols.Date)),
			Description:  resolveDescription(row.Get(cols.Description)),
			Amount:       amount,
			Type:         txType,
			CategoryHint: strings.TrimSpace(row.Get(cols.Category)),
			Currency:     currency,
		})
	}
	return staged
}

// resolveDate keeps the source's date text when it is resolvable and
// substitutes the processing date for blank cells, spreadsheet error
// markers ("#REF!", "#VALUE!") and anything no layout can parse.
func (p *StatementProcessor) resolveDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return p.now().Format("2006-01-02")
	}
	if _, ok := normalizeStatementDate(trimmed); !ok {
		return p.now().Format("2006-01-02")
	}
	return trimmed
}

func resolveDescription(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultDescription
	}
	return trimmed
}
