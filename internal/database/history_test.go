package database

import (
	"context"
	"testing"
	"time"

	"github.com/formscan/formscan/internal/model"
)

// openTestDB opens a HistoryDB in a temporary directory.
func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := hdb.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return hdb
}

// testReport builds a minimal analysis report for tests.
func testReport(t *testing.T, document string, fields int) *model.AnalysisReport {
	t.Helper()

	id, err := model.NewModelID("daab1905-d321-4dc8-8316-13e4bdb0d834")
	if err != nil {
		t.Fatalf("failed to parse model ID: %v", err)
	}

	pairs := make([]model.KeyValuePair, 0, fields)
	for i := 0; i < fields; i++ {
		pairs = append(pairs, model.KeyValuePair{Key: "Field", Value: "value", Confidence: 0.9})
	}

	return &model.AnalysisReport{
		Document:    document,
		ModelID:     id,
		AnalyzedAt:  time.Now().UTC(),
		ContentType: "application/pdf",
		SizeBytes:   1024,
		Result: &model.AnalyzeResult{
			Status: "success",
			Pages:  []model.Page{{Number: 1, KeyValuePairs: pairs}},
		},
	}
}

// TestOpen tests database creation and the CreateIfNotExists option.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database file and schema", func(t *testing.T) {
		t.Parallel()

		hdb := openTestDB(t)
		if hdb.Path() == "" {
			t.Error("expected non-empty database path")
		}
	})

	t.Run("fails when database missing and creation disabled", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})
}

// TestInsertAndListAnalyses tests analysis storage and listing.
func TestInsertAndListAnalyses(t *testing.T) {
	t.Parallel()

	t.Run("round-trips an analysis report", func(t *testing.T) {
		t.Parallel()

		hdb := openTestDB(t)
		ctx := context.Background()

		id, err := hdb.InsertAnalysis(ctx, testReport(t, "invoice.pdf", 3))
		if err != nil {
			t.Fatalf("failed to insert analysis: %v", err)
		}

		got, err := hdb.GetAnalysisByID(ctx, id)
		if err != nil {
			t.Fatalf("failed to get analysis: %v", err)
		}
		if got == nil {
			t.Fatal("expected stored report")
		}
		if got.Document != "invoice.pdf" {
			t.Errorf("expected document 'invoice.pdf', got %q", got.Document)
		}
		if got.FieldCount() != 3 {
			t.Errorf("expected 3 fields, got %d", got.FieldCount())
		}
		if got.ModelID.String() != "daab1905-d321-4dc8-8316-13e4bdb0d834" {
			t.Errorf("unexpected model ID %q", got.ModelID)
		}
	})

	t.Run("lists analyses newest first with document filter", func(t *testing.T) {
		t.Parallel()

		hdb := openTestDB(t)
		ctx := context.Background()

		for _, doc := range []string{"a.pdf", "b.pdf", "a.pdf"} {
			if _, err := hdb.InsertAnalysis(ctx, testReport(t, doc, 1)); err != nil {
				t.Fatalf("failed to insert analysis: %v", err)
			}
		}

		all, err := hdb.ListAnalyses(ctx, "")
		if err != nil {
			t.Fatalf("failed to list analyses: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 analyses, got %d", len(all))
		}

		filtered, err := hdb.ListAnalyses(ctx, "a.pdf")
		if err != nil {
			t.Fatalf("failed to list analyses: %v", err)
		}
		if len(filtered) != 2 {
			t.Errorf("expected 2 analyses for a.pdf, got %d", len(filtered))
		}
		for _, meta := range filtered {
			if meta.Document != "a.pdf" {
				t.Errorf("unexpected document %q in filtered list", meta.Document)
			}
		}
	})

	t.Run("records failed analyses", func(t *testing.T) {
		t.Parallel()

		hdb := openTestDB(t)
		ctx := context.Background()

		report := testReport(t, "bad.pdf", 0)
		report.Result = nil
		report.ErrorMessage = "analyze: service returned 500"

		if _, err := hdb.InsertAnalysis(ctx, report); err != nil {
			t.Fatalf("failed to insert analysis: %v", err)
		}

		list, err := hdb.ListAnalyses(ctx, "bad.pdf")
		if err != nil {
			t.Fatalf("failed to list analyses: %v", err)
		}
		if len(list) != 1 || !list[0].Failed {
			t.Errorf("expected 1 failed analysis, got %+v", list)
		}
	})

	t.Run("missing row ID returns nil without error", func(t *testing.T) {
		t.Parallel()

		hdb := openTestDB(t)
		got, err := hdb.GetAnalysisByID(context.Background(), 999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil for missing row, got %+v", got)
		}
	})
}

// TestLatestAnalyses tests fetching recent reports for comparison.
func TestLatestAnalyses(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		report := testReport(t, "invoice.pdf", i)
		report.AnalyzedAt = time.Date(2026, 8, i, 12, 0, 0, 0, time.UTC)
		if _, err := hdb.InsertAnalysis(ctx, report); err != nil {
			t.Fatalf("failed to insert analysis: %v", err)
		}
	}

	reports, err := hdb.LatestAnalyses(ctx, "invoice.pdf", 2)
	if err != nil {
		t.Fatalf("failed to get latest analyses: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	// newest first
	if reports[0].FieldCount() != 3 || reports[1].FieldCount() != 2 {
		t.Errorf("expected newest-first ordering, got %d then %d fields",
			reports[0].FieldCount(), reports[1].FieldCount())
	}
}

// TestModelMirror tests the local model record mirror.
func TestModelMirror(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	id, err := model.NewModelID("daab1905-d321-4dc8-8316-13e4bdb0d834")
	if err != nil {
		t.Fatalf("failed to parse model ID: %v", err)
	}

	list := &model.ModelList{
		Count: 1,
		Models: []model.ModelInfo{{
			ModelID:   id,
			Status:    model.StatusCreating,
			CreatedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		}},
	}

	if err := hdb.RecordModels(ctx, list); err != nil {
		t.Fatalf("failed to record models: %v", err)
	}

	// Re-recording with a new status updates in place.
	list.Models[0].Status = model.StatusReady
	if err := hdb.RecordModels(ctx, list); err != nil {
		t.Fatalf("failed to re-record models: %v", err)
	}

	stored, err := hdb.ListStoredModels(ctx)
	if err != nil {
		t.Fatalf("failed to list stored models: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored model, got %d", len(stored))
	}
	if stored[0].Status != "ready" {
		t.Errorf("expected updated status 'ready', got %q", stored[0].Status)
	}

	if err := hdb.DeleteStoredModel(ctx, id.String()); err != nil {
		t.Fatalf("failed to delete stored model: %v", err)
	}
	stored, err = hdb.ListStoredModels(ctx)
	if err != nil {
		t.Fatalf("failed to list stored models: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("expected empty mirror after delete, got %d", len(stored))
	}
}

// TestParseTimestamp tests SQLite timestamp format handling.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		valid bool
	}{
		{"2026-08-29 10:00:00", true},
		{"2026-08-29T10:00:00Z", true},
		{"2026-08-29T10:00:00+09:00", true},
		{"not a timestamp", false},
	}

	for _, tt := range tests {
		got := parseTimestamp(tt.input)
		if tt.valid && got.IsZero() {
			t.Errorf("expected %q to parse", tt.input)
		}
		if !tt.valid && !got.IsZero() {
			t.Errorf("expected %q to yield zero time", tt.input)
		}
	}
}
