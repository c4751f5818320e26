// Package csvinput turns an uploaded CSV file into the newline-delimited text
// the email parser consumes.
package csvinput

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	dErrors "roster/pkg/domain-errors"
	"roster/pkg/email"
)

// MaxFileSize is the largest upload accepted by the handler.
const MaxFileSize = 1 << 20

const headerName = "email"

// Decode reads CSV records from r and returns the first non-empty column of
// every row, joined by email.LineSeparator. A leading header row whose value
// is "email" is skipped. Rows may have differing column counts.
func Decode(r io.Reader) (string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var lines []string
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "file is not valid CSV")
		}
		value := firstValue(record)
		if first {
			first = false
			if strings.EqualFold(value, headerName) {
				continue
			}
		}
		if value != "" {
			lines = append(lines, value)
		}
	}
	return strings.Join(lines, email.LineSeparator), nil
}

func firstValue(record []string) string {
	for _, field := range record {
		if v := strings.TrimSpace(strings.TrimPrefix(field, "\ufeff")); v != "" {
			return v
		}
	}
	return ""
}
