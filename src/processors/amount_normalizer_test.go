package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/pennywise/backend/src/models"
)

func amountRow(values map[string]string) (ColumnMap, models.ImportRow) {
	headers := make([]string, 0, len(values))
	for h := range values {
		headers = append(headers, h)
	}
	row := models.ImportRow{Headers: headers, Values: values}
	return ColumnMap{Debit: "Debit", Credit: "Credit", Amount: "Amount"}, row
}

func TestParseCellAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"100", 100},
		{"$1,234.50", 1234.50},
		{"1 234.50 USD", 1234.50},
		{"-50.00", -50},
		{"(empty)", 0},
		{"", 0},
		{"N/A", 0},
		{"--", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCellAmount(tt.raw), "raw=%q", tt.raw)
	}
}

func TestNormalizeAmount_SignRules(t *testing.T) {
	tests := []struct {
		name       string
		values     map[string]string
		wantAmount float64
		wantType   models.TransactionType
	}{
		{
			name:       "positive debit is an expense",
			values:     map[string]string{"Debit": "45.50"},
			wantAmount: 45.50,
			wantType:   models.TypeExpense,
		},
		{
			name:       "negative debit is a reversal, money back in",
			values:     map[string]string{"Debit": "-50.00"},
			wantAmount: 50.00,
			wantType:   models.TypeIncome,
		},
		{
			name:       "positive credit is income",
			values:     map[string]string{"Credit": "120.00"},
			wantAmount: 120.00,
			wantType:   models.TypeIncome,
		},
		{
			name:       "negative credit is money going out",
			values:     map[string]string{"Credit": "-75.25"},
			wantAmount: 75.25,
			wantType:   models.TypeExpense,
		},
		{
			name:       "positive generic amount is income",
			values:     map[string]string{"Amount": "300"},
			wantAmount: 300,
			wantType:   models.TypeIncome,
		},
		{
			name:       "negative generic amount is an expense",
			values:     map[string]string{"Amount": "-18.99"},
			wantAmount: 18.99,
			wantType:   models.TypeExpense,
		},
		{
			name:       "debit outranks credit and amount",
			values:     map[string]string{"Debit": "10", "Credit": "999", "Amount": "999"},
			wantAmount: 10,
			wantType:   models.TypeExpense,
		},
		{
			name:       "credit outranks amount when debit is empty",
			values:     map[string]string{"Debit": "", "Credit": "20", "Amount": "999"},
			wantAmount: 20,
			wantType:   models.TypeIncome,
		},
		{
			name:       "all cells empty yields zero",
			values:     map[string]string{"Debit": "", "Credit": "", "Amount": ""},
			wantAmount: 0,
			wantType:   models.TypeExpense,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, row := amountRow(tt.values)
			amount, txType := NormalizeAmount(cols, row)
			assert.Equal(t, tt.wantAmount, amount)
			assert.Equal(t, tt.wantType, txType)
		})
	}
}
