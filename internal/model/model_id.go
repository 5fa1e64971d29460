package model

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ModelID errors.
var (
	// ErrInvalidModelID is returned when the model ID is not a valid UUID.
	ErrInvalidModelID = errors.New("invalid model ID: must be a UUID")
	// ErrEmptyModelID is returned when the model ID is empty.
	ErrEmptyModelID = errors.New("model ID cannot be empty")
)

// ModelID is an immutable value object identifying a custom extraction model.
// The service assigns model IDs as UUIDs; we validate the format client-side
// so that malformed IDs are rejected before any network call.
type ModelID struct {
	id uuid.UUID
}

// NewModelID creates a ModelID from a string.
// The input is trimmed and lower-cased before parsing.
// Returns an error if the string is empty or not a valid UUID.
func NewModelID(s string) (ModelID, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return ModelID{}, ErrEmptyModelID
	}

	id, err := uuid.Parse(normalized)
	if err != nil {
		return ModelID{}, ErrInvalidModelID
	}
	return ModelID{id: id}, nil
}

// String returns the canonical string form of the model ID.
func (m ModelID) String() string {
	return m.id.String()
}

// IsZero reports whether the model ID is the zero value.
// A zero ModelID is the sentinel used when training failed and no
// model was produced.
func (m ModelID) IsZero() bool {
	return m.id == uuid.Nil
}

// MarshalJSON encodes the model ID as its canonical string form.
// A zero ID encodes as the empty string.
func (m ModelID) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(m.id.String())
}

// UnmarshalJSON decodes a model ID from its string form.
// The empty string decodes to the zero ID.
func (m *ModelID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*m = ModelID{}
		return nil
	}
	id, err := NewModelID(s)
	if err != nil {
		return err
	}
	*m = id
	return nil
}
