// Package report renders analysis results for humans and tools.
//
// The Writer interface has text, JSON, and Markdown implementations
// plus a MultiWriter for writing the same report to several
// destinations. XLSX export and report comparison live here too.
package report
