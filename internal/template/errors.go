package template

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is a sentinel error indicating a template source has no
// content for the requested id.
var ErrNotFound = errors.New("template not found")

// ValidationError reports a template that failed semantic validation.
//
// It carries the template id and every violated rule. No cache entry exists
// for a template that produced a ValidationError; fixing the source and
// loading again is the recovery path.
type ValidationError struct {
	// TemplateID is the id the template was loaded under.
	TemplateID string

	// Violations lists every rule the template broke.
	Violations []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("template %q failed validation: %s",
		e.TemplateID, strings.Join(e.Violations, "; "))
}

// IsValidationError checks whether err is a [ValidationError] and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
