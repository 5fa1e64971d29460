package model

import "time"

// DemoRun accumulates the state of the end-to-end demo flow:
// train, list keys, analyze, list models, delete model.
// Each pipeline step reads what earlier steps produced and records
// its own outcome; a step failure is logged and recorded here rather
// than aborting the run.
type DemoRun struct {
	// TrainingDataURL is the cloud storage URL of the labeled samples.
	TrainingDataURL string `json:"training_data_url"`

	// DocumentPath is the local document analyzed during the demo.
	DocumentPath string `json:"document_path"`

	// StartedAt is when the demo run began.
	StartedAt time.Time `json:"started_at"`

	// ModelID is the model produced by the train step.
	// Zero when training failed; later steps that need a model check this.
	ModelID ModelID `json:"model_id"`

	// TrainResult is the outcome of the train step, nil on failure.
	TrainResult *TrainResult `json:"train_result,omitempty"`

	// Keys is the outcome of the list-keys step, nil on failure or skip.
	Keys KeyClusters `json:"keys,omitempty"`

	// Analysis is the outcome of the analyze step, nil on failure or skip.
	Analysis *AnalysisReport `json:"analysis,omitempty"`

	// Models is the outcome of the list-models step, nil on failure.
	Models *ModelList `json:"models,omitempty"`

	// ModelDeleted reports whether the delete step succeeded.
	ModelDeleted bool `json:"model_deleted"`

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	// StepErrors maps a step name to its failure message.
	// The demo flow continues past failed steps, so multiple entries
	// can accumulate in one run.
	StepErrors map[string]string `json:"step_errors,omitempty"`
}

// NewDemoRun creates a DemoRun for the given inputs.
func NewDemoRun(trainingDataURL, documentPath string) *DemoRun {
	return &DemoRun{
		TrainingDataURL: trainingDataURL,
		DocumentPath:    documentPath,
		StartedAt:       time.Now(),
		StepErrors:      make(map[string]string),
	}
}

// RecordError records a step failure.
func (d *DemoRun) RecordError(step string, err error) {
	if err == nil {
		return
	}
	if d.StepErrors == nil {
		d.StepErrors = make(map[string]string)
	}
	d.StepErrors[step] = err.Error()
}

// Succeeded reports whether the whole demo ran without step failures.
func (d *DemoRun) Succeeded() bool {
	return len(d.StepErrors) == 0
}
