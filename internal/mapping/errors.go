package mapping

import (
	"errors"
	"fmt"
)

// ErrDatasetNotFound is returned when the dataset file does not exist.
var ErrDatasetNotFound = errors.New("mapping dataset not found")

// ValidationError reports a malformed record in a dataset. Loading stops at the
// first one; a store is never built from a partially valid dataset.
type ValidationError struct {
	Index  int    // zero-based position in the mappings list
	Code   string // namaste_code of the record, if present
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("mapping %d (%s): %s: %s", e.Index, e.Code, e.Field, e.Reason)
	}
	return fmt.Sprintf("mapping %d: %s: %s", e.Index, e.Field, e.Reason)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
