package model

import "time"

// AnalysisReport is the complete record of one analyze run.
// It wraps the service result with client-side context (which document,
// which model, preflight warnings) and is what the report writers render
// and the history database stores.
type AnalysisReport struct {
	// Document is the path of the analyzed document as given on the command line.
	Document string `json:"document"`

	// ModelID is the model used for the analysis.
	ModelID ModelID `json:"model_id"`

	// AnalyzedAt is when the analysis completed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// ContentType is the detected MIME type of the uploaded document.
	ContentType string `json:"content_type"`

	// SizeBytes is the size of the uploaded document.
	SizeBytes int64 `json:"size_bytes"`

	// PreflightWarnings are local warnings raised before upload
	// (e.g. GPS EXIF metadata present in the image).
	PreflightWarnings []string `json:"preflight_warnings,omitempty"`

	// Result is the service's extraction result.
	// Nil when the analyze call itself failed.
	Result *AnalyzeResult `json:"result,omitempty"`

	// ErrorMessage is set when the analyze call failed.
	ErrorMessage string `json:"error_message,omitempty"`
}

// Failed reports whether the analyze call failed.
func (r *AnalysisReport) Failed() bool {
	return r.ErrorMessage != ""
}

// FieldCount returns the number of extracted key/value pairs, zero on failure.
func (r *AnalysisReport) FieldCount() int {
	if r.Result == nil {
		return 0
	}
	return r.Result.FieldCount()
}

// TableCount returns the number of detected tables, zero on failure.
func (r *AnalysisReport) TableCount() int {
	if r.Result == nil {
		return 0
	}
	return r.Result.TableCount()
}

// PageCount returns the number of analyzed pages, zero on failure.
func (r *AnalysisReport) PageCount() int {
	if r.Result == nil {
		return 0
	}
	return len(r.Result.Pages)
}
