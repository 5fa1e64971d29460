package model

// ModelStatus represents the lifecycle state of a custom extraction model
// as reported by the service.
type ModelStatus string

const (
	// StatusCreating indicates training is still in progress.
	StatusCreating ModelStatus = "creating"
	// StatusReady indicates the model trained successfully and can analyze documents.
	StatusReady ModelStatus = "ready"
	// StatusInvalid indicates training failed; the model cannot be used.
	StatusInvalid ModelStatus = "invalid"
	// StatusUnknown indicates a status value this client does not recognize.
	StatusUnknown ModelStatus = "unknown"
)

// ParseModelStatus converts a service status string into a ModelStatus.
// Unrecognized values map to StatusUnknown rather than an error so that
// newer service versions do not break listing.
func ParseModelStatus(s string) ModelStatus {
	switch ModelStatus(s) {
	case StatusCreating, StatusReady, StatusInvalid:
		return ModelStatus(s)
	default:
		return StatusUnknown
	}
}

// String returns the string representation of the status.
func (s ModelStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is a final training state.
// Polling for training completion stops once a terminal status is seen.
func (s ModelStatus) IsTerminal() bool {
	return s == StatusReady || s == StatusInvalid
}

// Usable reports whether a model in this status can serve analyze requests.
func (s ModelStatus) Usable() bool {
	return s == StatusReady
}
