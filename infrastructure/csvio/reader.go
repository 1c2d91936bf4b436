// Package csvio reads company lists from CSV and renders enrichment results
// back out as CSV.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// companyColumn is the required input column.
const companyColumn = "company_name"

// ErrNoCompanyColumn indicates the input CSV has no company_name column.
var ErrNoCompanyColumn = errors.New(`missing required column "company_name"`)

// ReadCompanyNames extracts the company_name column from a CSV stream in row
// order. The header match is case-insensitive and ignores a UTF-8 byte order
// mark; extra columns and blank names are skipped.
func ReadCompanyNames(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoCompanyColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	nameIdx := -1
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))
		if strings.EqualFold(col, companyColumn) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, ErrNoCompanyColumn
	}

	var names []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return names, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if nameIdx >= len(rec) {
			continue
		}
		if name := strings.TrimSpace(rec[nameIdx]); name != "" {
			names = append(names, name)
		}
	}
}
