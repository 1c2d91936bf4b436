// Package dto holds request bodies accepted by the v1 API.
package dto

// BatchCreateAttributes carries the company names for a direct submission.
type BatchCreateAttributes struct {
	Names []string `json:"names"`
}

// BatchCreateData is the data object of a batch creation request.
type BatchCreateData struct {
	Type       string                `json:"type"`
	Attributes BatchCreateAttributes `json:"attributes"`
}

// BatchCreateRequest is a JSON:API request to create a batch from a list of
// company names, the alternative to a multipart CSV upload.
type BatchCreateRequest struct {
	Data BatchCreateData `json:"data"`
}
