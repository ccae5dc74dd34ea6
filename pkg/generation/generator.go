// Package generation defines the boundary with the external step-graph
// generation collaborator. The collaborator is opaque: it takes a prompt and
// returns either a complete, valid graph or a single typed failure — never a
// partially applied one.
package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowdeck/flowdeck/pkg/models"
)

// ErrUpstreamGeneration is the sentinel wrapped by every generation failure:
// transport errors, non-2xx responses, unparsable content, and structurally
// invalid graphs all surface as this one typed failure.
var ErrUpstreamGeneration = errors.New("upstream generation failed")

// GenerationError carries the failing prompt context alongside the cause.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream generation failed: %s: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("upstream generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return ErrUpstreamGeneration
}

func newGenerationError(reason string, err error) *GenerationError {
	return &GenerationError{Reason: reason, Err: err}
}

// IsUpstreamGenerationFailure checks if an error came from the generation
// boundary.
func IsUpstreamGenerationFailure(err error) bool {
	return errors.Is(err, ErrUpstreamGeneration)
}

// Generator produces a step graph from a natural-language prompt plus an
// optional learned-preference hint block.
type Generator interface {
	Generate(ctx context.Context, prompt, preferences string) (*models.Graph, error)
}
