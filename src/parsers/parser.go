// Package parsers turns uploaded statement files into generic rows the
// import pipeline can reason about. The column layout is discovered per
// file, never assumed.
package parsers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/username/pennywise/backend/src/models"
)

// ErrUnsupportedFormat is returned when no parser exists for the
// uploaded file's declared type.
var ErrUnsupportedFormat = errors.New("unsupported statement format")

// Parser converts a statement file into ordered header->value rows.
type Parser interface {
	Parse(file io.Reader) ([]models.ImportRow, error)
}

// GetParser selects a parser from the uploader's MIME hint. CSV is the
// only supported statement format; anything else (PDF included) is
// rejected here rather than deep in the pipeline.
func GetParser(mimeHint string) (Parser, error) {
	hint := strings.ToLower(strings.TrimSpace(mimeHint))
	// Strip any parameters, e.g. "text/csv; charset=utf-8".
	if i := strings.Index(hint, ";"); i >= 0 {
		hint = strings.TrimSpace(hint[:i])
	}
	switch hint {
	case "csv", "text/csv", "application/csv", "text/plain", "application/vnd.ms-excel":
		return NewCSVParser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, mimeHint)
	}
}
