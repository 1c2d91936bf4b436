// Package v1 implements the versioned REST API over the batch services.
package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/firmint/firmint"
	"github.com/firmint/firmint/domain/batch"
	"github.com/firmint/firmint/infrastructure/api/jsonapi"
	"github.com/firmint/firmint/infrastructure/api/middleware"
	"github.com/firmint/firmint/infrastructure/api/v1/dto"
	"github.com/firmint/firmint/infrastructure/csvio"
)

// maxUploadBytes caps in-memory multipart parsing.
const maxUploadBytes = 10 << 20

// downloadFilename is the attachment name for result downloads.
const downloadFilename = "enriched_companies.csv"

// BatchesRouter handles batch API endpoints.
type BatchesRouter struct {
	client     *firmint.Client
	logger     *slog.Logger
	serializer *jsonapi.Serializer
}

// NewBatchesRouter creates a new BatchesRouter.
func NewBatchesRouter(client *firmint.Client) *BatchesRouter {
	return &BatchesRouter{
		client:     client,
		logger:     client.Logger(),
		serializer: jsonapi.NewSerializer(),
	}
}

// Routes returns the chi router for batch endpoints.
func (r *BatchesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Create)
	router.Get("/", r.List)
	router.Get("/{id}", r.Get)
	router.Get("/{id}/records", r.Records)
	router.Get("/{id}/download", r.Download)
	router.Delete("/{id}", r.Delete)

	return router
}

// Create handles POST /api/v1/batches. It accepts either a multipart CSV
// upload (field "file") or a JSON:API body carrying company names. Input
// problems are rejected with a 400 before anything is queued; accepted
// batches return 202 since enrichment runs in the background.
func (r *BatchesRouter) Create(w http.ResponseWriter, req *http.Request) {
	var created batch.Batch
	var err error
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
		created, err = r.createFromUpload(req)
	} else {
		created, err = r.createFromJSON(req)
	}
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, jsonapi.NewSingleResponse(r.serializer.BatchResource(created)))
}

func (r *BatchesRouter) createFromUpload(req *http.Request) (batch.Batch, error) {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return batch.Batch{}, middleware.NewAPIError(http.StatusBadRequest, "malformed multipart body", err)
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return batch.Batch{}, middleware.NewAPIError(http.StatusBadRequest, `multipart field "file" is required`, err)
	}
	defer func() { _ = file.Close() }()

	source := header.Filename
	if source == "" {
		source = "upload.csv"
	}
	return r.client.Batches.CreateFromCSV(req.Context(), source, file)
}

func (r *BatchesRouter) createFromJSON(req *http.Request) (batch.Batch, error) {
	var body dto.BatchCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return batch.Batch{}, middleware.NewAPIError(http.StatusBadRequest, "malformed request body", err)
	}
	return r.client.Batches.Create(req.Context(), "api", body.Data.Attributes.Names)
}

// List handles GET /api/v1/batches with page/page_size parameters.
func (r *BatchesRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	pagination := ParsePagination(req)

	batches, total, err := r.client.Batches.List(ctx, pagination.Limit(), pagination.Offset())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := jsonapi.NewListResponse(r.serializer.BatchResources(batches))
	response.Meta = PaginationMeta(pagination, total)
	response.Links = PaginationLinks(req, pagination, total)

	middleware.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/batches/{id}. The response meta carries live
// progress: state, completion percent, and processed/total counts.
func (r *BatchesRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := parseID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	b, err := r.client.Batches.Get(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	meta := jsonapi.Meta{
		"state": string(b.State()),
	}
	if status, found, err := r.client.Tracking.EnrichmentStatus(ctx, id); err == nil && found {
		meta["progress"] = status.CompletionPercent()
		meta["processed"] = status.Current()
		meta["total"] = status.Total()
		if status.Message() != "" {
			meta["message"] = status.Message()
		}
	}

	response := jsonapi.NewSingleResponse(r.serializer.BatchResource(b))
	response.Meta = &meta

	middleware.WriteJSON(w, http.StatusOK, response)
}

// Records handles GET /api/v1/batches/{id}/records.
func (r *BatchesRouter) Records(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := parseID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	records, err := r.client.Batches.Records(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := jsonapi.NewListResponse(r.serializer.RecordResources(id, records))
	response.Meta = &jsonapi.Meta{"total_count": len(records)}

	middleware.WriteJSON(w, http.StatusOK, response)
}

// Download handles GET /api/v1/batches/{id}/download. The CSV is only
// available once the batch is terminal; earlier requests get a 409.
func (r *BatchesRouter) Download(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := parseID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data, err := r.client.Batches.ExportCSV(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadFilename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Delete handles DELETE /api/v1/batches/{id}.
func (r *BatchesRouter) Delete(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := parseID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Batches.Delete(ctx, id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SampleCSV handles GET /api/v1/sample.csv, serving the embedded sample
// download used by the docs and first-run flows.
func SampleCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="companies.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csvio.SampleCSV()))
}

func parseID(req *http.Request) (int64, error) {
	idStr := chi.URLParam(req, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, middleware.NewAPIError(http.StatusBadRequest, "invalid batch id", err)
	}
	return id, nil
}
