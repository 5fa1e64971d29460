package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/formscan/formscan/internal/model"
	"github.com/formscan/formscan/internal/preflight"
)

const testModelID = "daab1905-d321-4dc8-8316-13e4bdb0d834"

// fakeService is a scripted ServiceClient for step tests.
type fakeService struct {
	trainResult   *model.TrainResult
	trainErr      error
	waitResult    *model.TrainResult
	waitErr       error
	keys          model.KeyClusters
	keysErr       error
	analyzeResult *model.AnalyzeResult
	analyzeErr    error
	modelList     *model.ModelList
	listErr       error
	deleteErr     error

	deletedID  string
	analyzedCT string
}

func (f *fakeService) Train(context.Context, string) (*model.TrainResult, error) {
	return f.trainResult, f.trainErr
}

func (f *fakeService) WaitForTraining(context.Context, model.ModelID, time.Duration, time.Duration) (*model.TrainResult, error) {
	return f.waitResult, f.waitErr
}

func (f *fakeService) GetExtractedKeys(context.Context, model.ModelID) (model.KeyClusters, error) {
	return f.keys, f.keysErr
}

func (f *fakeService) Analyze(_ context.Context, _ model.ModelID, _ []byte, contentType string) (*model.AnalyzeResult, error) {
	f.analyzedCT = contentType
	return f.analyzeResult, f.analyzeErr
}

func (f *fakeService) ListModels(context.Context) (*model.ModelList, error) {
	return f.modelList, f.listErr
}

func (f *fakeService) DeleteModel(_ context.Context, id model.ModelID) error {
	f.deletedID = id.String()
	return f.deleteErr
}

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// trainResult builds a TrainResult with the given status.
func trainResult(t *testing.T, status model.ModelStatus) *model.TrainResult {
	t.Helper()

	id, err := model.NewModelID(testModelID)
	if err != nil {
		t.Fatalf("failed to parse model ID: %v", err)
	}
	return &model.TrainResult{
		ModelInfo: model.ModelInfo{ModelID: id, Status: status},
	}
}

// writeTestPDF writes a minimal PDF file and returns its path.
func writeTestPDF(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.7 content"), 0o600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

// TestTrainStep tests the training step.
func TestTrainStep(t *testing.T) {
	t.Parallel()

	t.Run("trains and waits until model is ready", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{
			trainResult: trainResult(t, model.StatusCreating),
			waitResult:  trainResult(t, model.StatusReady),
		}
		step := NewTrainStep(svc, time.Millisecond, time.Second, discardLogger())

		run := model.NewDemoRun("https://storage.example.com/training", "doc.pdf")
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.ModelID.String() != testModelID {
			t.Errorf("unexpected model ID %q", run.ModelID)
		}
		if run.TrainResult.ModelInfo.Status != model.StatusReady {
			t.Errorf("expected ready status, got %q", run.TrainResult.ModelInfo.Status)
		}
	})

	t.Run("leaves model ID zero when the request fails", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{trainErr: errors.New("service down")}
		step := NewTrainStep(svc, time.Millisecond, time.Second, discardLogger())

		run := model.NewDemoRun("https://storage.example.com/training", "doc.pdf")
		if err := step.Do(context.Background(), run); err == nil {
			t.Fatal("expected error")
		}
		if !run.ModelID.IsZero() {
			t.Errorf("expected zero model ID, got %q", run.ModelID)
		}
	})

	t.Run("fails when training ends invalid", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{
			trainResult: trainResult(t, model.StatusCreating),
			waitResult:  trainResult(t, model.StatusInvalid),
		}
		step := NewTrainStep(svc, time.Millisecond, time.Second, discardLogger())

		run := model.NewDemoRun("https://storage.example.com/training", "doc.pdf")
		if err := step.Do(context.Background(), run); err == nil {
			t.Fatal("expected error for invalid model")
		}
		// ID is still recorded so the delete step can clean up.
		if run.ModelID.IsZero() {
			t.Error("expected model ID to be recorded")
		}
	})
}

// TestKeysStep tests the key listing step.
func TestKeysStep(t *testing.T) {
	t.Parallel()

	t.Run("records learned keys", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{keys: model.KeyClusters{"0": {"Invoice No.", "Total"}}}
		step := NewKeysStep(svc, discardLogger())

		run := model.NewDemoRun("https://storage.example.com/training", "doc.pdf")
		run.ModelID = trainResult(t, model.StatusReady).ModelInfo.ModelID

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.Keys.TotalKeys() != 2 {
			t.Errorf("expected 2 keys, got %d", run.Keys.TotalKeys())
		}
	})

	t.Run("skips without a model", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{keysErr: errors.New("should not be called")}
		step := NewKeysStep(svc, discardLogger())

		run := model.NewDemoRun("https://storage.example.com/training", "doc.pdf")
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("expected skip, got %v", err)
		}
		if run.Keys != nil {
			t.Errorf("expected no keys, got %v", run.Keys)
		}
	})
}

// TestAnalyzeStep tests the document analysis step.
func TestAnalyzeStep(t *testing.T) {
	t.Parallel()

	t.Run("analyzes the run's document", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{
			analyzeResult: &model.AnalyzeResult{
				Status: "success",
				Pages: []model.Page{{
					Number:        1,
					KeyValuePairs: []model.KeyValuePair{{Key: "Total", Value: "42.00", Confidence: 0.9}},
				}},
			},
		}
		step := NewAnalyzeStep(svc, preflight.NewChecker(), discardLogger())

		run := model.NewDemoRun("https://storage.example.com/training", writeTestPDF(t))
		run.ModelID = trainResult(t, model.StatusReady).ModelInfo.ModelID

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.Analysis == nil || run.Analysis.FieldCount() != 1 {
			t.Fatalf("expected analysis with 1 field, got %+v", run.Analysis)
		}
		if svc.analyzedCT != "application/pdf" {
			t.Errorf("expected sniffed PDF content type, got %q", svc.analyzedCT)
		}
	})

	t.Run("records failed analysis on the run", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{analyzeErr: errors.New("service error")}
		step := NewAnalyzeStep(svc, preflight.NewChecker(), discardLogger())

		run := model.NewDemoRun("https://storage.example.com/training", writeTestPDF(t))
		run.ModelID = trainResult(t, model.StatusReady).ModelInfo.ModelID

		if err := step.Do(context.Background(), run); err == nil {
			t.Fatal("expected error")
		}
		if run.Analysis == nil || !run.Analysis.Failed() {
			t.Errorf("expected failed analysis report on the run, got %+v", run.Analysis)
		}
	})

	t.Run("skips without a model", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{analyzeErr: errors.New("should not be called")}
		step := NewAnalyzeStep(svc, preflight.NewChecker(), discardLogger())

		run := model.NewDemoRun("https://storage.example.com/training", "doc.pdf")
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("expected skip, got %v", err)
		}
	})
}

// TestListModelsStep tests the model listing step.
func TestListModelsStep(t *testing.T) {
	t.Parallel()

	svc := &fakeService{modelList: &model.ModelList{Count: 3, Limit: 250}}
	step := NewListModelsStep(svc, discardLogger())

	run := model.NewDemoRun("https://storage.example.com/training", "doc.pdf")
	if err := step.Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Models == nil || run.Models.Count != 3 {
		t.Errorf("expected model list with count 3, got %+v", run.Models)
	}
}

// TestDeleteModelStep tests the cleanup step.
func TestDeleteModelStep(t *testing.T) {
	t.Parallel()

	t.Run("deletes the demo model", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{}
		step := NewDeleteModelStep(svc, discardLogger())

		run := model.NewDemoRun("https://storage.example.com/training", "doc.pdf")
		run.ModelID = trainResult(t, model.StatusReady).ModelInfo.ModelID

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !run.ModelDeleted {
			t.Error("expected ModelDeleted to be set")
		}
		if svc.deletedID != testModelID {
			t.Errorf("expected delete of %q, got %q", testModelID, svc.deletedID)
		}
	})

	t.Run("skips without a model", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{deleteErr: errors.New("should not be called")}
		step := NewDeleteModelStep(svc, discardLogger())

		run := model.NewDemoRun("https://storage.example.com/training", "doc.pdf")
		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("expected skip, got %v", err)
		}
		if run.ModelDeleted {
			t.Error("expected ModelDeleted to stay false")
		}
		if svc.deletedID != "" {
			t.Errorf("expected no delete call, got %q", svc.deletedID)
		}
	})
}
