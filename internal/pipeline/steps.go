package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/formscan/formscan/internal/model"
	"github.com/formscan/formscan/internal/preflight"
)

// ServiceClient is the subset of the API client the demo steps use.
// Declared here so steps can be tested against a fake service.
type ServiceClient interface {
	Train(ctx context.Context, sourceURL string) (*model.TrainResult, error)
	WaitForTraining(ctx context.Context, id model.ModelID, interval, timeout time.Duration) (*model.TrainResult, error)
	GetExtractedKeys(ctx context.Context, id model.ModelID) (model.KeyClusters, error)
	Analyze(ctx context.Context, id model.ModelID, document []byte, contentType string) (*model.AnalyzeResult, error)
	ListModels(ctx context.Context) (*model.ModelList, error)
	DeleteModel(ctx context.Context, id model.ModelID) error
}

// TrainStep trains a new custom model from the run's training data URL
// and waits for training to finish.
type TrainStep struct {
	// client performs the service calls.
	client ServiceClient

	// pollInterval is how often training status is polled.
	pollInterval time.Duration

	// pollTimeout bounds the whole training wait.
	pollTimeout time.Duration

	// logger reports training progress.
	logger *slog.Logger
}

// NewTrainStep creates a TrainStep.
func NewTrainStep(client ServiceClient, pollInterval, pollTimeout time.Duration, logger *slog.Logger) *TrainStep {
	return &TrainStep{
		client:       client,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		logger:       logger,
	}
}

// Name returns the step's name.
func (s *TrainStep) Name() string {
	return "train"
}

// Do starts training and polls until the model reaches a terminal
// status. On success the run carries the new model ID; on failure the
// ID stays zero and later steps that need a model skip themselves.
func (s *TrainStep) Do(ctx context.Context, run *model.DemoRun) error {
	result, err := s.client.Train(ctx, run.TrainingDataURL)
	if err != nil {
		return fmt.Errorf("training request failed: %w", err)
	}

	run.ModelID = result.ModelInfo.ModelID
	run.TrainResult = result

	if !result.ModelInfo.Status.IsTerminal() {
		result, err = s.client.WaitForTraining(ctx, run.ModelID, s.pollInterval, s.pollTimeout)
		if result != nil {
			run.TrainResult = result
		}
		if err != nil {
			return fmt.Errorf("training wait failed: %w", err)
		}
	}

	if !result.ModelInfo.Status.Usable() {
		return fmt.Errorf("model %s finished training with status %s", run.ModelID, result.ModelInfo.Status)
	}

	s.logger.Info("model trained",
		"model_id", run.ModelID.String(),
		"succeeded_documents", result.SucceededDocuments(),
	)
	return nil
}

// KeysStep fetches the keys the trained model learned.
type KeysStep struct {
	client ServiceClient
	logger *slog.Logger
}

// NewKeysStep creates a KeysStep.
func NewKeysStep(client ServiceClient, logger *slog.Logger) *KeysStep {
	return &KeysStep{client: client, logger: logger}
}

// Name returns the step's name.
func (s *KeysStep) Name() string {
	return "keys"
}

// Do fetches the learned keys. Skipped when training produced no model.
func (s *KeysStep) Do(ctx context.Context, run *model.DemoRun) error {
	if run.ModelID.IsZero() {
		s.logger.Warn("no model available, skipping key listing")
		return nil
	}

	keys, err := s.client.GetExtractedKeys(ctx, run.ModelID)
	if err != nil {
		return fmt.Errorf("key listing failed: %w", err)
	}

	run.Keys = keys
	s.logger.Info("learned keys fetched",
		"model_id", run.ModelID.String(),
		"clusters", len(keys),
		"keys", keys.TotalKeys(),
	)
	return nil
}

// AnalyzeStep runs the run's document through the trained model.
type AnalyzeStep struct {
	client  ServiceClient
	checker *preflight.Checker
	logger  *slog.Logger
}

// NewAnalyzeStep creates an AnalyzeStep.
func NewAnalyzeStep(client ServiceClient, checker *preflight.Checker, logger *slog.Logger) *AnalyzeStep {
	return &AnalyzeStep{client: client, checker: checker, logger: logger}
}

// Name returns the step's name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do preflights the document and analyzes it. Skipped when training
// produced no model.
func (s *AnalyzeStep) Do(ctx context.Context, run *model.DemoRun) error {
	if run.ModelID.IsZero() {
		s.logger.Warn("no model available, skipping analysis")
		return nil
	}

	report, err := AnalyzeDocument(ctx, s.client, s.checker, run.ModelID, run.DocumentPath)
	if report != nil {
		run.Analysis = report
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	s.logger.Info("document analyzed",
		"document", run.DocumentPath,
		"fields", report.FieldCount(),
		"tables", report.TableCount(),
	)
	return nil
}

// ListModelsStep fetches the account's model list.
type ListModelsStep struct {
	client ServiceClient
	logger *slog.Logger
}

// NewListModelsStep creates a ListModelsStep.
func NewListModelsStep(client ServiceClient, logger *slog.Logger) *ListModelsStep {
	return &ListModelsStep{client: client, logger: logger}
}

// Name returns the step's name.
func (s *ListModelsStep) Name() string {
	return "list-models"
}

// Do lists the account's models.
func (s *ListModelsStep) Do(ctx context.Context, run *model.DemoRun) error {
	list, err := s.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("model listing failed: %w", err)
	}

	run.Models = list
	s.logger.Info("models listed", "count", list.Count, "limit", list.Limit)
	return nil
}

// DeleteModelStep removes the demo model from the account.
type DeleteModelStep struct {
	client ServiceClient
	logger *slog.Logger
}

// NewDeleteModelStep creates a DeleteModelStep.
func NewDeleteModelStep(client ServiceClient, logger *slog.Logger) *DeleteModelStep {
	return &DeleteModelStep{client: client, logger: logger}
}

// Name returns the step's name.
func (s *DeleteModelStep) Name() string {
	return "delete-model"
}

// Do deletes the demo model. Skipped when training produced no model,
// so a failed run never issues a delete for the zero ID.
func (s *DeleteModelStep) Do(ctx context.Context, run *model.DemoRun) error {
	if run.ModelID.IsZero() {
		s.logger.Warn("no model available, skipping deletion")
		return nil
	}

	if err := s.client.DeleteModel(ctx, run.ModelID); err != nil {
		return fmt.Errorf("model deletion failed: %w", err)
	}

	run.ModelDeleted = true
	s.logger.Info("model deleted", "model_id", run.ModelID.String())
	return nil
}

// AnalyzeDocument preflights path and runs it through the model,
// assembling the full analysis report. The report is returned even when
// the analyze call fails, with the failure recorded on it, so callers
// can still store and render partial runs.
func AnalyzeDocument(ctx context.Context, client ServiceClient, checker *preflight.Checker, id model.ModelID, path string) (*model.AnalysisReport, error) {
	check, data, err := checker.CheckFile(path)
	if err != nil {
		return nil, err
	}

	report := &model.AnalysisReport{
		Document:          path,
		ModelID:           id,
		ContentType:       check.ContentType,
		SizeBytes:         check.SizeBytes,
		PreflightWarnings: preflight.Messages(check.Warnings),
	}

	result, err := client.Analyze(ctx, id, data, check.ContentType)
	report.AnalyzedAt = time.Now()
	if err != nil {
		report.ErrorMessage = err.Error()
		return report, err
	}

	report.Result = result
	return report, nil
}
