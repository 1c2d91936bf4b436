package jsonapi

import (
	"fmt"
	"time"

	"github.com/firmint/firmint/domain/batch"
	"github.com/firmint/firmint/domain/enrichment"
)

// BatchAttributes represents batch attributes in JSON:API format.
type BatchAttributes struct {
	Source         string     `json:"source"`
	State          string     `json:"state"`
	CompanyCount   int        `json:"company_count"`
	SucceededCount int        `json:"succeeded_count"`
	FailedCount    int        `json:"failed_count"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// RecordAttributes represents enrichment record attributes in JSON:API format.
type RecordAttributes struct {
	CompanyName  string `json:"company_name"`
	Website      string `json:"website"`
	Industry     string `json:"industry"`
	CompanySize  string `json:"company_size"`
	HQLocation   string `json:"hq_location"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Serializer converts domain objects to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a new Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// BatchResource converts a batch to a JSON:API resource.
func (s *Serializer) BatchResource(b batch.Batch) *Resource {
	createdAt := b.CreatedAt()
	updatedAt := b.UpdatedAt()
	succeeded, failed := b.RecordCounts()

	attrs := &BatchAttributes{
		Source:         b.Source(),
		State:          string(b.State()),
		CompanyCount:   len(b.Names()),
		SucceededCount: succeeded,
		FailedCount:    failed,
		ErrorMessage:   b.ErrorMessage(),
		CreatedAt:      &createdAt,
		UpdatedAt:      &updatedAt,
	}
	return NewResource("batches", fmt.Sprintf("%d", b.ID()), attrs)
}

// BatchResources converts multiple batches to JSON:API resources.
func (s *Serializer) BatchResources(batches []batch.Batch) []*Resource {
	resources := make([]*Resource, len(batches))
	for i, b := range batches {
		resources[i] = s.BatchResource(b)
	}
	return resources
}

// RecordResource converts an enrichment record to a JSON:API resource.
// Records have no identity of their own, so the ID combines the batch ID
// with the record's position.
func (s *Serializer) RecordResource(batchID int64, index int, r enrichment.Record) *Resource {
	attrs := &RecordAttributes{
		CompanyName:  r.CompanyName(),
		Website:      r.Website(),
		Industry:     r.Industry(),
		CompanySize:  r.CompanySize(),
		HQLocation:   r.HQLocation(),
		Status:       string(r.Status()),
		ErrorMessage: r.ErrorMessage(),
	}
	return NewResource("records", fmt.Sprintf("%d-%d", batchID, index), attrs)
}

// RecordResources converts a batch's records to JSON:API resources.
func (s *Serializer) RecordResources(batchID int64, records []enrichment.Record) []*Resource {
	resources := make([]*Resource, len(records))
	for i, r := range records {
		resources[i] = s.RecordResource(batchID, i, r)
	}
	return resources
}
