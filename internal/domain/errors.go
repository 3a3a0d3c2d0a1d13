package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by stores and repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// ValidationErrors collects every field failure of one request.
type ValidationErrors struct {
	Errors []*ValidationError `json:"errors"`
}

// Add appends a field failure.
func (e *ValidationErrors) Add(field, message string, value interface{}) {
	e.Errors = append(e.Errors, NewValidationError(field, message, value))
}

// HasErrors reports whether any failure was recorded.
func (e *ValidationErrors) HasErrors() bool {
	return e != nil && len(e.Errors) > 0
}

// Fields returns the names of the failing fields in order.
func (e *ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, fe.Field)
	}
	return fields
}

// Error implements the error interface
func (e *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the individual failures to errors.As.
func (e *ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, fe := range e.Errors {
		errs = append(errs, fe)
	}
	return errs
}

// RemoteScorerError reports a failed call to the remote scorer.
type RemoteScorerError struct {
	Op         string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *RemoteScorerError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote scorer %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote scorer %s: %v", e.Op, e.Err)
}

func (e *RemoteScorerError) Unwrap() error {
	return e.Err
}

// FatalScoringError means no scorer produced a usable result. The fallback
// scorer always answers, so this indicates a defect.
type FatalScoringError struct {
	Reason string
}

// Error implements the error interface
func (e *FatalScoringError) Error() string {
	return "scoring failed: " + e.Reason
}
