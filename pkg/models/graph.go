package models

import (
	"errors"
	"fmt"
)

// Structural validation errors. Edits and ingestion both reject graphs that
// would violate one of these; the store is never left holding a graph for
// which Validate fails.
var (
	ErrSparseStepIDs      = errors.New("step ids must be exactly 1..N")
	ErrDuplicateStepID    = errors.New("duplicate step id")
	ErrDanglingReference  = errors.New("reference to a step not present in the graph")
	ErrSelfReference      = errors.New("step cannot depend on itself")
	ErrCycleDetected      = errors.New("dependency cycle detected")
)

// GraphMetadata carries the identity block of a persisted workflow record.
type GraphMetadata struct {
	Name       string `json:"name"`
	InstanceID string `json:"instance_id"`
	Version    string `json:"version"`
	IsTemplate bool   `json:"is_template"`
}

// Graph is an ordered sequence of steps plus its metadata block.
//
// Invariants held by every admitted graph:
//   - step ids are exactly the set {1..N}, N = step count
//   - every id referenced by depends_on or prior_step_ids names a present step
//   - the relation formed by depends_on plus the implicit previous-step
//     fallback edge is acyclic
type Graph struct {
	Metadata GraphMetadata `json:"metadata"`
	Steps    []*Step       `json:"steps"`
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}

	clone := &Graph{Metadata: g.Metadata, Steps: make([]*Step, 0, len(g.Steps))}
	for _, step := range g.Steps {
		clone.Steps = append(clone.Steps, step.Clone())
	}

	return clone
}

// StepByID returns the step with the given id, or nil when absent.
func (g *Graph) StepByID(id int) *Step {
	for _, step := range g.Steps {
		if step.ID == id {
			return step
		}
	}

	return nil
}

// Validate checks all three structural invariants.
func (g *Graph) Validate() error {
	if err := ValidateSteps(g.Steps); err != nil {
		return err
	}

	return nil
}

// ValidateSteps checks the dense-id, reference-validity and acyclicity
// invariants over an ordered step sequence.
func ValidateSteps(steps []*Step) error {
	present := make(map[int]bool, len(steps))

	for _, step := range steps {
		if present[step.ID] {
			return fmt.Errorf("step %d: %w", step.ID, ErrDuplicateStepID)
		}

		present[step.ID] = true
	}

	for id := 1; id <= len(steps); id++ {
		if !present[id] {
			return fmt.Errorf("missing step %d of %d: %w", id, len(steps), ErrSparseStepIDs)
		}
	}

	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if dep == step.ID {
				return fmt.Errorf("step %d: %w", step.ID, ErrSelfReference)
			}

			if !present[dep] {
				return fmt.Errorf("step %d depends on %d: %w", step.ID, dep, ErrDanglingReference)
			}
		}

		if step.Input.Kind == InputPriorOutput {
			for _, ref := range step.Input.StepIDs {
				if ref == step.ID {
					return fmt.Errorf("step %d: %w", step.ID, ErrSelfReference)
				}

				if !present[ref] {
					return fmt.Errorf("step %d reads output of %d: %w", step.ID, ref, ErrDanglingReference)
				}
			}
		}
	}

	return validateAcyclic(steps)
}

// validateAcyclic walks the effective dependency relation: explicit
// depends_on edges plus, for steps without any, the implicit edge from the
// step immediately before them in sequence.
func validateAcyclic(steps []*Step) error {
	edges := make(map[int][]int, len(steps)) // step id -> predecessor ids

	for i, step := range steps {
		if len(step.DependsOn) > 0 {
			edges[step.ID] = step.DependsOn

			continue
		}

		if i > 0 {
			edges[step.ID] = []int{steps[i-1].ID}
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)

	state := make(map[int]int, len(steps))

	var visit func(id int) error

	visit = func(id int) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("at step %d: %w", id, ErrCycleDetected)
		case done:
			return nil
		}

		state[id] = visiting

		for _, pred := range edges[id] {
			if err := visit(pred); err != nil {
				return err
			}
		}

		state[id] = done

		return nil
	}

	for _, step := range steps {
		if err := visit(step.ID); err != nil {
			return err
		}
	}

	return nil
}
