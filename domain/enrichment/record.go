// Package enrichment provides domain types for AI-guessed company attributes.
package enrichment

// Status reports how a record was produced: parsed from a provider response,
// or synthesized after a per-company failure.
type Status string

// Status values.
const (
	StatusOk     Status = "ok"
	StatusFailed Status = "failed"
)

// Fields holds the four guessed attributes for one company. Every attribute
// is optional: an empty string means it could not be determined.
type Fields struct {
	website     string
	industry    string
	companySize string
	hqLocation  string
}

// NewFields creates a Fields value from the four attributes.
func NewFields(website, industry, companySize, hqLocation string) Fields {
	return Fields{
		website:     website,
		industry:    industry,
		companySize: companySize,
		hqLocation:  hqLocation,
	}
}

// Website returns the guessed website, or empty.
func (f Fields) Website() string { return f.website }

// Industry returns the guessed industry, or empty.
func (f Fields) Industry() string { return f.industry }

// CompanySize returns the guessed employee-count bucket, or empty.
func (f Fields) CompanySize() string { return f.companySize }

// HQLocation returns the guessed headquarters location, or empty.
func (f Fields) HQLocation() string { return f.hqLocation }

// IsEmpty reports whether no attribute was determined.
func (f Fields) IsEmpty() bool {
	return f.website == "" && f.industry == "" && f.companySize == "" && f.hqLocation == ""
}

// Record is one immutable output row for one input company.
//
// Invariant: Status() is StatusFailed exactly when ErrorMessage() is
// non-empty and all four attributes are empty. The constructors are the only
// way to build a Record, so the invariant holds by construction.
type Record struct {
	companyName  string
	fields       Fields
	status       Status
	errorMessage string
}

// NewRecord creates a successful record for a company. Partially-filled
// fields still produce StatusOk; only provider or parse failures produce
// failed records.
func NewRecord(companyName string, fields Fields) Record {
	return Record{
		companyName: companyName,
		fields:      fields,
		status:      StatusOk,
	}
}

// NewFailedRecord creates a failed record: all attributes empty, the error
// message set. An empty message is replaced with a generic one so the
// failed-iff-message invariant holds.
func NewFailedRecord(companyName, errorMessage string) Record {
	if errorMessage == "" {
		errorMessage = "enrichment failed"
	}
	return Record{
		companyName:  companyName,
		status:       StatusFailed,
		errorMessage: errorMessage,
	}
}

// CompanyName returns the input company name this record belongs to.
func (r Record) CompanyName() string { return r.companyName }

// Fields returns the guessed attributes.
func (r Record) Fields() Fields { return r.fields }

// Website returns the guessed website, or empty.
func (r Record) Website() string { return r.fields.website }

// Industry returns the guessed industry, or empty.
func (r Record) Industry() string { return r.fields.industry }

// CompanySize returns the guessed employee-count bucket, or empty.
func (r Record) CompanySize() string { return r.fields.companySize }

// HQLocation returns the guessed headquarters location, or empty.
func (r Record) HQLocation() string { return r.fields.hqLocation }

// Status returns whether the record succeeded or failed.
func (r Record) Status() Status { return r.status }

// ErrorMessage returns the failure diagnostic, or empty for ok records.
func (r Record) ErrorMessage() string { return r.errorMessage }

// Failed reports whether this record represents a per-company failure.
func (r Record) Failed() bool { return r.status == StatusFailed }
