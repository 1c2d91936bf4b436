package csvio

import _ "embed"

//go:embed sample_companies.csv
var sampleCSV string

// SampleCSV returns a small companies CSV for first-run experiments and
// documentation downloads.
func SampleCSV() string { return sampleCSV }
