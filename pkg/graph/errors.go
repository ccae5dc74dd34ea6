// Package graph holds the ordered step collection and applies structural
// edits, keeping step ids dense and cross-references coherent.
package graph

import (
	"errors"
	"fmt"
)

// ErrStepNotFound indicates an edit named a step id absent from the graph.
var ErrStepNotFound = errors.New("step not found")

// ErrInvalidOrder indicates a reorder request that is not a permutation of
// the current step ids.
var ErrInvalidOrder = errors.New("order must be a permutation of current step ids")

// StructuralViolationError wraps a rejected edit with context. The edit was
// refused before any mutation; the store still holds its previous state.
type StructuralViolationError struct {
	Op  string // operation being applied, e.g. "InsertAfter"
	Err error  // underlying invariant failure
}

func (e *StructuralViolationError) Error() string {
	return fmt.Sprintf("%s rejected: %v", e.Op, e.Err)
}

func (e *StructuralViolationError) Unwrap() error {
	return e.Err
}

func newViolation(op string, err error) *StructuralViolationError {
	return &StructuralViolationError{Op: op, Err: err}
}

// IsStructuralViolation checks if an error is a rejected structural edit.
// Only edits refused by the store qualify; a bare validation sentinel from
// another boundary is not a structural violation.
func IsStructuralViolation(err error) bool {
	var violation *StructuralViolationError

	return errors.As(err, &violation)
}

// IsStepNotFound checks if an error indicates a step was not found.
func IsStepNotFound(err error) bool {
	return errors.Is(err, ErrStepNotFound)
}
