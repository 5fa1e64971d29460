// Package formapi implements the HTTP client for the form-understanding
// service. It wraps the six wire operations the service exposes for
// custom extraction models: train, get model, list extracted keys,
// analyze a document, list models, and delete a model.
//
// Every response body is validated against the documented wire schema
// before decoding, so a drifting service contract surfaces as a clear
// client-side error instead of silently-zero fields.
package formapi
