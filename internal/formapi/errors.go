package formapi

import (
	"errors"
	"fmt"
)

// Client validation errors. These are raised locally, before any
// network call.
var (
	// ErrInvalidEndpoint is returned when the service endpoint is not an
	// absolute http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint: must be an absolute http(s) URL")

	// ErrNoAPIKey is returned when the client is constructed without a key.
	ErrNoAPIKey = errors.New("API key is required")

	// ErrInvalidTrainingURL is returned when the training data URL is not
	// an absolute http(s) URL.
	ErrInvalidTrainingURL = errors.New("invalid training data URL: must be an absolute http(s) URL")

	// ErrUnsupportedContentType is returned when a document's content type
	// is not one the service analyzes.
	ErrUnsupportedContentType = errors.New("unsupported content type: must be application/pdf, image/jpeg, image/png, or image/tiff")

	// ErrEmptyDocument is returned when an empty document is given to Analyze.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrSchemaMismatch is returned when a service response does not match
	// the documented wire schema.
	ErrSchemaMismatch = errors.New("service response does not match wire schema")
)

// APIError describes a failed service call. It carries the operation
// name, the HTTP status, and the service's error code/message when the
// response body included one.
type APIError struct {
	// Op is the operation that failed ("train", "analyze", ...).
	Op string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Code is the service error code, empty if not reported.
	Code string

	// Message is the service error message, or the raw body when the
	// response was not the documented error envelope.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: service returned %d (%s): %s", e.Op, e.StatusCode, e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: service returned %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: service returned %d", e.Op, e.StatusCode)
}

// IsNotFound reports whether the error is a 404 from the service,
// typically a deleted or never-existing model ID.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// IsAuthFailure reports whether the error indicates a bad or missing
// API key.
func (e *APIError) IsAuthFailure() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
