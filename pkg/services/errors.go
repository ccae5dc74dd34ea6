// Package services provides standardized error types for service layer
// operations.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrTemplateNameRequired = errors.New("template name is required")
	ErrGraphRequired        = errors.New("template must carry a workflow graph")

	// ErrMalformedImport indicates externally supplied serialized data
	// failed shape validation. The import was a no-op; the store is
	// untouched.
	ErrMalformedImport = errors.New("malformed import record")

	// ErrGeneratorNotConfigured indicates the generation endpoint was not
	// configured for this deployment.
	ErrGeneratorNotConfigured = errors.New("generator not configured")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // operation name
	Message string // human-readable message
	Err     error  // underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should
// surface as HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrTemplateNameRequired) ||
		errors.Is(err, ErrGraphRequired)
}

// IsMalformedImport checks if an error indicates a rejected import.
func IsMalformedImport(err error) bool {
	return errors.Is(err, ErrMalformedImport)
}
