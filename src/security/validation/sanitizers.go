package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// ErrValidationFailed is the sentinel wrapped by all field validation errors.
var ErrValidationFailed = fmt.Errorf("validation failed")

// strictHTMLPolicy strips all HTML tags and attributes.
var strictHTMLPolicy = bluemonday.StrictPolicy()

// SanitizeText removes all HTML from user-supplied free text
// (descriptions, category names, saving sources) before it reaches the
// database.
func SanitizeText(s string) string {
	return strictHTMLPolicy.Sanitize(s)
}

// SanitizeForFormulaInjection defuses spreadsheet formula injection by
// prefixing a single quote when the value starts with a formula trigger.
// Statement cells round-trip into CSV exports, so this applies to
// imported descriptions as well as manual ones.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 {
		return s
	}
	switch rune(trimmed[0]) {
	case '=', '+', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// StripUnprintable removes non-printable characters while keeping common
// whitespace.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// CleanUserText is the composed sanitizer applied to every user-supplied
// text field on its way into storage.
func CleanUserText(s string) string {
	return strings.TrimSpace(SanitizeText(StripUnprintable(s)))
}
