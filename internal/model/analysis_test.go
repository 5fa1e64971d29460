package model

import "testing"

// sampleResult returns a two-page analysis result used by several tests.
func sampleResult() *AnalyzeResult {
	return &AnalyzeResult{
		Status: "success",
		Pages: []Page{
			{
				Number:    1,
				ClusterID: 0,
				KeyValuePairs: []KeyValuePair{
					{Key: "Invoice No:", Value: "INV-2041", Confidence: 0.98},
					{Key: "Date:", Value: "2026-03-14", Confidence: 0.95},
				},
				Tables: []Table{
					{
						ID: "table_0",
						Columns: []TableColumn{
							{Header: "Item", Entries: []string{"Widget", "Gadget"}},
							{Header: "Qty", Entries: []string{"2", "5"}},
						},
					},
				},
			},
			{
				Number:    2,
				ClusterID: 0,
				KeyValuePairs: []KeyValuePair{
					{Key: "Total:", Value: "128.40", Confidence: 0.91},
				},
			},
		},
	}
}

// TestAnalyzeResultCounts verifies field, table, and row counting.
func TestAnalyzeResultCounts(t *testing.T) {
	t.Parallel()

	r := sampleResult()

	if got := r.FieldCount(); got != 3 {
		t.Errorf("FieldCount() = %d, want 3", got)
	}
	if got := r.TableCount(); got != 1 {
		t.Errorf("TableCount() = %d, want 1", got)
	}
	if got := r.Pages[0].Tables[0].Rows(); got != 2 {
		t.Errorf("Rows() = %d, want 2", got)
	}
}

// TestAnalyzeResultFields verifies the flattened field map, including
// NFC normalization of key text and later-page precedence on duplicates.
func TestAnalyzeResultFields(t *testing.T) {
	t.Parallel()

	t.Run("flattens pages into one map", func(t *testing.T) {
		t.Parallel()
		fields := sampleResult().Fields()
		if len(fields) != 3 {
			t.Fatalf("expected 3 fields, got %d", len(fields))
		}
		if fields["Total:"] != "128.40" {
			t.Errorf("unexpected value for Total:: %q", fields["Total:"])
		}
	})

	t.Run("duplicate keys: later page wins", func(t *testing.T) {
		t.Parallel()
		r := &AnalyzeResult{Pages: []Page{
			{Number: 1, KeyValuePairs: []KeyValuePair{{Key: "Date:", Value: "old"}}},
			{Number: 2, KeyValuePairs: []KeyValuePair{{Key: "Date:", Value: "new"}}},
		}}
		if got := r.Fields()["Date:"]; got != "new" {
			t.Errorf("expected later page to win, got %q", got)
		}
	})

	t.Run("decomposed keys fold to NFC", func(t *testing.T) {
		t.Parallel()
		r := &AnalyzeResult{Pages: []Page{
			{Number: 1, KeyValuePairs: []KeyValuePair{{Key: "Réf:", Value: "42"}}},
		}}
		if got := r.Fields()["Réf:"]; got != "42" {
			t.Errorf("expected NFC-normalized key lookup to succeed, got %q", got)
		}
	})
}

// TestAnalysisReportHelpers verifies the failure-aware count helpers.
func TestAnalysisReportHelpers(t *testing.T) {
	t.Parallel()

	t.Run("failed report counts as zero", func(t *testing.T) {
		t.Parallel()
		rep := &AnalysisReport{Document: "a.pdf", ErrorMessage: "analyze failed"}
		if !rep.Failed() {
			t.Error("expected Failed() to be true")
		}
		if rep.FieldCount() != 0 || rep.TableCount() != 0 || rep.PageCount() != 0 {
			t.Error("expected zero counts for failed report")
		}
	})

	t.Run("successful report delegates to result", func(t *testing.T) {
		t.Parallel()
		rep := &AnalysisReport{Document: "a.pdf", Result: sampleResult()}
		if rep.Failed() {
			t.Error("expected Failed() to be false")
		}
		if rep.FieldCount() != 3 || rep.PageCount() != 2 {
			t.Errorf("unexpected counts: fields=%d pages=%d", rep.FieldCount(), rep.PageCount())
		}
	})
}
