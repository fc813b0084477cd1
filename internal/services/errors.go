package services

import "fmt"

// ValidationError marks failures caused by the request itself (missing or
// invalid fields, unknown entities, insufficient stock). Handlers surface
// it as a 4xx with the message verbatim; it is never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
