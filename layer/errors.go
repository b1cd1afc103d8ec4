package layer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLayerData is returned when a layer definition is malformed.
	ErrInvalidLayerData = errors.New("layer: invalid layer data")

	// ErrNotFound is returned when an update names an id the store does not hold.
	ErrNotFound = errors.New("layer: not found")
)

// ValidationError describes which field of a layer was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("layer: invalid layer data: %s", e.Reason)
	}
	return fmt.Sprintf("layer: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidLayerData.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidLayerData
}
