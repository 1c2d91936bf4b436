package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/firmint/firmint/application/service"
	"github.com/firmint/firmint/domain/batch"
	domainservice "github.com/firmint/firmint/domain/service"
	"github.com/firmint/firmint/domain/task"
	"github.com/firmint/firmint/infrastructure/api/jsonapi"
	"github.com/firmint/firmint/infrastructure/csvio"
	"github.com/firmint/firmint/infrastructure/provider"
)

// ErrAuthentication is the sentinel all authentication failures match.
var ErrAuthentication = errors.New("authentication failed")

// ErrServer is the sentinel all upstream server errors match.
var ErrServer = errors.New("server error")

// APIError is an error with an associated HTTP status code.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError with the given status code and message.
// The cause may be nil.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %s", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error { return e.cause }

// AuthenticationError indicates a request failed authentication.
type AuthenticationError struct {
	message string
}

// NewAuthenticationError creates an AuthenticationError with a detail message.
func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{message: message}
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.message)
}

// Unwrap makes the error match ErrAuthentication with errors.Is.
func (e *AuthenticationError) Unwrap() error { return ErrAuthentication }

// ServerError indicates an upstream or internal server failure.
type ServerError struct {
	statusCode int
	message    string
}

// NewServerError creates a ServerError with the given status code and message.
func NewServerError(statusCode int, message string) *ServerError {
	return &ServerError{statusCode: statusCode, message: message}
}

// StatusCode returns the HTTP status code.
func (e *ServerError) StatusCode() int { return e.statusCode }

// Message returns the client-facing message.
func (e *ServerError) Message() string { return e.message }

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.statusCode, e.message)
}

// Unwrap makes the error match ErrServer with errors.Is.
func (e *ServerError) Unwrap() error { return ErrServer }

// WriteError writes err as a JSON:API error document, mapping known error
// kinds to their status codes. Unrecognized errors become a 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	title := "Internal Server Error"
	detail := err.Error()

	var apiErr *APIError
	var serverErr *ServerError
	var providerErr *provider.ProviderError

	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code()
		title = http.StatusText(status)
		detail = apiErr.Message()
	case errors.As(err, &serverErr):
		status = serverErr.StatusCode()
		title = http.StatusText(status)
		detail = serverErr.Message()
	case errors.Is(err, ErrAuthentication):
		status = http.StatusUnauthorized
		title = "Unauthorized"
	case errors.Is(err, batch.ErrNotFound), errors.Is(err, task.ErrNotFound):
		status = http.StatusNotFound
		title = "Not Found"
	case errors.Is(err, domainservice.ErrNoInput), errors.Is(err, csvio.ErrNoCompanyColumn):
		status = http.StatusBadRequest
		title = "Invalid Input"
	case errors.Is(err, service.ErrBatchNotReady):
		status = http.StatusConflict
		title = "Batch Not Ready"
	case errors.As(err, &providerErr):
		status = http.StatusBadGateway
		title = "Upstream Provider Error"
	}

	requestID := middleware.GetReqID(r.Context())

	if logger != nil {
		logger.Error("request error",
			slog.String("request_id", requestID),
			slog.Int("status", status),
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
	}

	doc := jsonapi.NewErrorResponse(jsonapi.Error{
		ID:     requestID,
		Status: strconv.Itoa(status),
		Title:  title,
		Detail: detail,
	})

	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(doc)
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
