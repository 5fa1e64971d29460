// Package model defines the core data structures for formscan.
// It contains the domain types exchanged with the form-understanding
// service (model records, extracted key clusters, analysis results)
// and the report structures rendered by the report package.
package model
