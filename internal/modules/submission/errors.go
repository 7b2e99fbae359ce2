package submission

import (
	"errors"
	"fmt"

	"eduforms/internal/engine"
)

var ErrFormNotFound = errors.New("form not found")

// ValidationError carries the server-side per-field re-validation result.
// It maps back onto the same field-adjacent error surface the client uses.
type ValidationError struct {
	Fields engine.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("submission rejected: %d invalid fields", len(e.Fields))
}
