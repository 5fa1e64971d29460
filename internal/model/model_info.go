package model

import "time"

// ModelInfo is the status record the service keeps for a custom model.
type ModelInfo struct {
	// ModelID identifies the model.
	ModelID ModelID `json:"model_id"`

	// Status is the training lifecycle state.
	Status ModelStatus `json:"status"`

	// CreatedAt is when training was requested.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the service last changed the record.
	UpdatedAt time.Time `json:"updated_at"`
}

// ModelList is the result of listing all models in the account.
type ModelList struct {
	// Count is the number of trained models in the account.
	Count int `json:"count"`

	// Limit is the account's model quota, zero if the service did not report one.
	Limit int `json:"limit,omitempty"`

	// Models holds the status records, in the order the service returned them.
	Models []ModelInfo `json:"models"`
}

// TrainingDocument describes one labeled sample document the service
// consumed during training.
type TrainingDocument struct {
	// Name is the document's file name inside the training container.
	Name string `json:"name"`

	// Pages is the number of pages the service read from the document.
	Pages int `json:"pages"`

	// Status is "succeeded" or "failed" for this document.
	Status string `json:"status"`

	// Errors holds per-document training error messages, if any.
	Errors []string `json:"errors,omitempty"`
}

// TrainResult is the outcome of a training request.
type TrainResult struct {
	// ModelInfo is the status record of the new model.
	ModelInfo ModelInfo `json:"model_info"`

	// TrainingDocuments reports the per-document training outcome.
	// Empty while the model is still in the creating state.
	TrainingDocuments []TrainingDocument `json:"training_documents,omitempty"`

	// Errors holds training-level error messages, if any.
	Errors []string `json:"errors,omitempty"`
}

// SucceededDocuments returns how many training documents succeeded.
func (t *TrainResult) SucceededDocuments() int {
	n := 0
	for _, d := range t.TrainingDocuments {
		if d.Status == "succeeded" {
			n++
		}
	}
	return n
}
