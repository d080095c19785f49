package grafanarama

import "fmt"

// FieldError reports a malformed or type-mismatched value for a named
// document field. It is returned by dashboard construction and validation so
// callers can identify exactly which field was rejected.
type FieldError struct {
	// Field is the wire name of the offending field, e.g. "schemaVersion"
	// or "metadata.creationTimestamp".
	Field string

	// Reason describes why the value was rejected.
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// fieldErrorf builds a FieldError with a formatted reason.
func fieldErrorf(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
