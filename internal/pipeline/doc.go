// Package pipeline orchestrates multi-step flows against the service.
//
// The Pipeline type runs the demo flow: train a model, list its learned
// keys, analyze a document, list the account's models, and delete the
// demo model. Steps run in sequence and, in continue-on-error mode, a
// failed step is logged and recorded on the run while later steps still
// execute.
//
// The BatchAnalyzer type runs one analysis per input document with
// bounded concurrency.
package pipeline
