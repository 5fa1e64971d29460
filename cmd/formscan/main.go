// Package main provides the entry point for the formscan CLI.
//
// formscan is a client for a cloud form-understanding service. It trains
// custom extraction models from labeled sample documents, analyzes forms
// with them, and manages the models in the account.
//
// Usage:
//
//	formscan train --data-url <container-url> --wait
//	formscan analyze <model-id> <file>...
//	formscan demo --data-url <container-url> --document <file>
//
// See --help for all available options.
package main

// main is the entry point for formscan.
func main() {
	Execute()
}
