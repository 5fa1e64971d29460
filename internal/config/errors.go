package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Package-level sentinel errors let callers use errors.Is() while still
// carrying a human-readable message.
var (
	// ErrNoEndpoint is returned when no service endpoint is configured.
	ErrNoEndpoint = errors.New("no service endpoint: set " + EnvEndpoint + " or use --endpoint")

	// ErrNoAPIKey is returned when no API key is configured.
	ErrNoAPIKey = errors.New("no API key: set " + EnvAPIKey)

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPollInterval is returned when the training poll interval
	// is not positive.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max response body size
	// is negative. Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidMaxUploadSize is returned when the max upload size is
	// negative. Use 0 for the default limit.
	ErrInvalidMaxUploadSize = errors.New("invalid max upload size: must be non-negative")
)
