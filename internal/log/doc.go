// Package log provides secure logging utilities for formscan.
//
// The client handles two kinds of secrets that must never reach log
// output: the service API key sent with every request, and shared-access
// URLs for the training data container, whose query string embeds a
// signature that grants read access to the customer's documents.
// SecureHandler wraps any slog.Handler and masks both before the record
// is written.
package log
