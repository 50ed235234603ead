package services

import "errors"

var (
	// ErrParsingFailed wraps any failure to turn the uploaded file into rows.
	ErrParsingFailed = errors.New("statement parsing failed")
	// ErrNoTransactionsFound means parsing succeeded but no row carried a
	// usable amount.
	ErrNoTransactionsFound = errors.New("no transactions found in statement")
	// ErrImportSessionExpired means the confirmation referenced a staged
	// import that no longer exists (expired, committed, or another user's).
	ErrImportSessionExpired = errors.New("import session expired or not found")
)
