package validation

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeText_StripsHTML(t *testing.T) {
	assert.Equal(t, "hello", SanitizeText("<script>alert(1)</script>hello"))
	assert.Equal(t, "bold", SanitizeText("<b>bold</b>"))
	assert.Equal(t, "plain text", SanitizeText("plain text"))
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"=SUM(A1:A9)", "'=SUM(A1:A9)"},
		{"+1234", "'+1234"},
		{"@cmd", "'@cmd"},
		{"  =danger", "'  =danger"},
		{"-50.00", "-50.00"}, // minus is a legitimate amount prefix
		{"normal text", "normal text"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeForFormulaInjection(tt.in), "in=%q", tt.in)
	}
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "abc", StripUnprintable("a\x00b\x07c"))
	assert.Equal(t, "keep\ttabs\nand newlines", StripUnprintable("keep\ttabs\nand newlines"))
}

func TestCleanUserText(t *testing.T) {
	assert.Equal(t, "Coffee shop", CleanUserText("  <i>Coffee</i> shop \x00 "))
}

func TestValidateStringNotEmpty(t *testing.T) {
	assert.NoError(t, ValidateStringNotEmpty("x", "field"))
	err := ValidateStringNotEmpty("   ", "field")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestValidateStringMaxLength(t *testing.T) {
	assert.NoError(t, ValidateStringMaxLength(strings.Repeat("a", 10), 10, "field"))
	assert.Error(t, ValidateStringMaxLength(strings.Repeat("a", 11), 10, "field"))
	// Rune count, not byte count.
	assert.NoError(t, ValidateStringMaxLength(strings.Repeat("é", 10), 10, "field"))
}

func TestValidateCurrencyCode(t *testing.T) {
	assert.NoError(t, ValidateCurrencyCode("USD"))
	assert.NoError(t, ValidateCurrencyCode("eur"))
	assert.Error(t, ValidateCurrencyCode("US"))
	assert.Error(t, ValidateCurrencyCode("USDT"))
	assert.Error(t, ValidateCurrencyCode("U$D"))
	assert.Error(t, ValidateCurrencyCode(""))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(0))
	assert.NoError(t, ValidateAmount(99.99))
	assert.Error(t, ValidateAmount(-1))
	assert.Error(t, ValidateAmount(math.NaN()))
	assert.Error(t, ValidateAmount(math.Inf(1)))
}

func TestValidateTransactionType(t *testing.T) {
	assert.NoError(t, ValidateTransactionType("income"))
	assert.NoError(t, ValidateTransactionType("expense"))
	assert.Error(t, ValidateTransactionType("transfer"))
	assert.Error(t, ValidateTransactionType(""))
}

func TestValidateClientContentType(t *testing.T) {
	assert.NoError(t, ValidateClientContentType("text/csv"))
	assert.NoError(t, ValidateClientContentType("Text/CSV; charset=utf-8"))
	assert.NoError(t, ValidateClientContentType("application/vnd.ms-excel"))
	assert.Error(t, ValidateClientContentType("application/pdf"))
	assert.Error(t, ValidateClientContentType(""))
}

func TestValidateStatementContent_AcceptsCSVText(t *testing.T) {
	file := bytes.NewReader([]byte("Date,Description,Amount\n2025-06-01,Coffee,5.75\n"))
	detected, err := ValidateStatementContent(file)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", detected)

	// Reader must be rewound for the parser.
	pos, _ := file.Seek(0, 1)
	assert.Zero(t, pos)
}

func TestValidateStatementContent_RejectsBinary(t *testing.T) {
	_, err := ValidateStatementContent(bytes.NewReader([]byte{0x25, 0x50, 0x44, 0x46, 0x00, 0x01}))
	assert.Error(t, err)
}

func TestValidateStatementContent_RejectsEmpty(t *testing.T) {
	_, err := ValidateStatementContent(bytes.NewReader(nil))
	assert.Error(t, err)
}
