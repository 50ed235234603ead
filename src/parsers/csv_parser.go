package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/username/pennywise/backend/src/models"
)

// CSVParser reads comma-separated bank exports. The first record is the
// header row; every later record becomes an ImportRow keyed by those
// headers in file order.
type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(file io.Reader) ([]models.ImportRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // bank exports are rarely rectangular
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv parser: failed to read header row: %w", err)
	}

	headers := make([]string, 0, len(header))
	for _, h := range header {
		headers = append(headers, strings.TrimSpace(h))
	}

	var importRows []models.ImportRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv parser: failed to read record: %w", err)
		}

		values := make(map[string]string, len(headers))
		empty := true
		for i, h := range headers {
			var cell string
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}
			if cell != "" {
				empty = false
			}
			values[h] = cell
		}
		// Blank separator lines carry no data.
		if empty {
			continue
		}
		importRows = append(importRows, models.ImportRow{Headers: headers, Values: values})
	}

	return importRows, nil
}
