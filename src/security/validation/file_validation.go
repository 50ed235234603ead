package validation

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/username/pennywise/backend/src/logger"
)

// allowedClientContentTypes are the MIME types a client may declare for a
// statement upload. CSVs arrive under several historical labels.
var allowedClientContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true, // older Excel exports CSV under this
	"text/plain":               true,
}

// ValidateClientContentType checks the Content-Type header declared by
// the uploading client.
func ValidateClientContentType(contentType string) error {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(normalized, ";"); i >= 0 {
		normalized = strings.TrimSpace(normalized[:i])
	}
	if !allowedClientContentTypes[normalized] {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("file type %q is not allowed for statement upload", contentType)
	}
	return nil
}

// isBinaryContent reports whether the buffer looks like binary data
// rather than a text statement: null bytes or invalid UTF-8.
func isBinaryContent(buf []byte) bool {
	if bytes.IndexByte(buf, 0) != -1 {
		return true
	}
	return !utf8.Valid(buf)
}

// ValidateStatementContent inspects the first KB of the upload to reject
// binary files regardless of what the client declared, then rewinds the
// reader so the parser sees the whole file.
func ValidateStatementContent(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file is nil")
	}

	buffer := make([]byte, 1024)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file for content inspection: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind file after inspection: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("file is empty")
	}

	if isBinaryContent(buffer[:n]) {
		logger.L.Warn("Statement upload rejected: binary content detected")
		return "application/octet-stream", fmt.Errorf("file appears to be binary, not a text statement")
	}

	detected := http.DetectContentType(buffer[:n])
	detected = strings.ToLower(strings.Split(detected, ";")[0])

	// http.DetectContentType has no CSV signature; plain text is what a
	// well-formed CSV detects as.
	switch detected {
	case "text/plain", "text/csv", "application/csv":
		return detected, nil
	default:
		logger.L.Warn("Statement upload rejected: disallowed detected content type", "detected", detected)
		return detected, fmt.Errorf("detected file content type %q is not allowed", detected)
	}
}
