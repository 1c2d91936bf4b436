package csvio

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/firmint/firmint/domain/enrichment"
)

// Header is the fixed output column order.
func Header() []string {
	return []string{
		"company_name",
		"website",
		"industry",
		"company_size",
		"hq_location",
		"status",
		"error_message",
	}
}

// WriteRecords renders records as CSV with the stable Header ordering, one
// row per record in input order.
func WriteRecords(w io.Writer, records []enrichment.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.CompanyName(),
			r.Website(),
			r.Industry(),
			r.CompanySize(),
			r.HQLocation(),
			string(r.Status()),
			r.ErrorMessage(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRecords renders records as an in-memory CSV document.
func MarshalRecords(records []enrichment.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteRecords(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
