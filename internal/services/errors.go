// Package services provides the business logic layer for the application portal.
// This file defines the error taxonomy shared by the service operations.
package services

import (
	"errors"
	"fmt"
)

// ValidationError marks input rejected before any mutation. The message is
// field-level and safe to show to the caller. Handlers map it to a 400
// response; callers must fix the input rather than retry.
type ValidationError struct {
	Field   string // Offending field (empty for whole-command errors)
	Message string // Human-readable description
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrRunInProgress is returned when a case-night assignment run is requested
// while another run holds the batch lock. The caller should wait for the
// running batch to finish rather than retry immediately.
var ErrRunInProgress = errors.New("an assignment run is already in progress")
