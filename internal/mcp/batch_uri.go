package mcp

import (
	"fmt"
	"strconv"
	"strings"
)

// batchRecordsTemplate is the URI template registered for the batch records
// resource.
const batchRecordsTemplate = "firmint://batches/{id}/records.csv"

// BatchURI builds batch resource URIs for MCP resource templates.
// Immutable value object.
type BatchURI struct {
	batchID int64
}

// NewBatchURI creates a BatchURI for the given batch.
func NewBatchURI(batchID int64) BatchURI {
	return BatchURI{batchID: batchID}
}

// BatchID returns the batch the URI points at.
func (u BatchURI) BatchID() int64 {
	return u.batchID
}

// String builds the firmint:// URI string.
func (u BatchURI) String() string {
	return fmt.Sprintf("firmint://batches/%d/records.csv", u.batchID)
}

// ParseBatchURI extracts the batch ID from a batch records URI. It accepts
// exactly the shape String produces.
func ParseBatchURI(uri string) (BatchURI, error) {
	rest, ok := strings.CutPrefix(uri, "firmint://batches/")
	if !ok {
		return BatchURI{}, fmt.Errorf("not a batch records URI: %s", uri)
	}
	idPart, ok := strings.CutSuffix(rest, "/records.csv")
	if !ok {
		return BatchURI{}, fmt.Errorf("not a batch records URI: %s", uri)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return BatchURI{}, fmt.Errorf("invalid batch id in URI %s: %w", uri, err)
	}
	return NewBatchURI(id), nil
}
