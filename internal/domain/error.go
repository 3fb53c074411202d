package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("job not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyQuery      = errors.New("query must not be empty")
	ErrInvalidEmail    = errors.New("destination email is invalid")
	ErrEmptyReport     = errors.New("report is empty")
	ErrNoSearchResults = errors.New("no usable search results")
)

// ExternalServiceError marks a collaborator failure: transport error,
// timeout, or a response that could not be validated. The pipeline treats
// every instance as terminal for the owning job.
type ExternalServiceError struct {
	Service string // "classifier", "planner", "search", "writer", "auditor", "mailer"
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: external service failure: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// NewExternalServiceError wraps err with the collaborator name.
func NewExternalServiceError(service string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Err: err}
}

// IsExternalServiceError reports whether err (or anything it wraps) is an
// ExternalServiceError.
func IsExternalServiceError(err error) bool {
	var e *ExternalServiceError
	return errors.As(err, &e)
}
