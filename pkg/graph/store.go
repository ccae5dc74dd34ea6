package graph

import (
	"fmt"
	"slices"

	"github.com/flowdeck/flowdeck/pkg/models"
)

// Store holds the ordered step collection for one editing session. Every
// structural edit renumbers the surviving steps to 1..N in their new
// relative order and rewrites cross-references through the position-derived
// id mapping. Edits are all-or-nothing: a rejected edit leaves the store
// exactly as it was.
//
// The store is a single-writer structure; callers serialize access.
type Store struct {
	steps []*models.Step
}

// NewStore builds a store over an initial step sequence. The sequence must
// already satisfy the structural invariants.
func NewStore(steps []*models.Step) (*Store, error) {
	store := &Store{}
	if err := store.Admit(&models.Graph{Steps: steps}); err != nil {
		return nil, err
	}

	return store, nil
}

// NewEmptyStore builds a store with no steps.
func NewEmptyStore() *Store {
	return &Store{steps: make([]*models.Step, 0)}
}

// Len returns the current step count.
func (s *Store) Len() int {
	return len(s.steps)
}

// Steps returns a deep copy of the current ordered sequence.
func (s *Store) Steps() []*models.Step {
	steps := make([]*models.Step, 0, len(s.steps))
	for _, step := range s.steps {
		steps = append(steps, step.Clone())
	}

	return steps
}

// Graph returns a snapshot of the current sequence wrapped as a graph.
func (s *Store) Graph() *models.Graph {
	return &models.Graph{Steps: s.Steps()}
}

// Admit replaces the store contents with an externally produced graph after
// validating it. Malformed graphs are rejected, never repaired.
func (s *Store) Admit(g *models.Graph) error {
	if err := models.ValidateSteps(g.Steps); err != nil {
		return newViolation("Admit", err)
	}

	steps := make([]*models.Step, 0, len(g.Steps))
	for _, step := range g.Steps {
		steps = append(steps, step.Clone())
	}

	s.steps = steps

	return nil
}

// InsertAfter inserts a step after the anchor step. An anchor of 0 appends
// at the end. The new step's id is assigned by renumbering; any depends_on
// or prior-output references it carries are interpreted against the
// pre-insert ids.
func (s *Store) InsertAfter(anchorID int, step *models.Step) error {
	position := len(s.steps)

	if anchorID != 0 {
		index := s.indexOf(anchorID)
		if index < 0 {
			return fmt.Errorf("insert after step %d: %w", anchorID, ErrStepNotFound)
		}

		position = index + 1
	}

	candidate := make([]*models.Step, 0, len(s.steps)+1)
	for _, existing := range s.steps {
		candidate = append(candidate, existing.Clone())
	}

	inserted := step.Clone()
	inserted.ID = 0 // assigned by renumbering
	candidate = slices.Insert(candidate, position, inserted)

	return s.commit("InsertAfter", candidate)
}

// Delete removes a step. Surviving steps are renumbered and every reference
// to the deleted id is dropped from the referencing set.
func (s *Store) Delete(id int) error {
	index := s.indexOf(id)
	if index < 0 {
		return fmt.Errorf("delete step %d: %w", id, ErrStepNotFound)
	}

	candidate := make([]*models.Step, 0, len(s.steps)-1)

	for i, existing := range s.steps {
		if i == index {
			continue
		}

		candidate = append(candidate, existing.Clone())
	}

	return s.commit("Delete", candidate)
}

// Move repositions a step to newIndex (0-based) in the sequence. Indexes
// past either end clamp to the nearest valid position, matching drag-drop
// behavior.
func (s *Store) Move(id, newIndex int) error {
	index := s.indexOf(id)
	if index < 0 {
		return fmt.Errorf("move step %d: %w", id, ErrStepNotFound)
	}

	if newIndex < 0 {
		newIndex = 0
	}

	if newIndex > len(s.steps)-1 {
		newIndex = len(s.steps) - 1
	}

	candidate := make([]*models.Step, 0, len(s.steps))
	for _, existing := range s.steps {
		candidate = append(candidate, existing.Clone())
	}

	moved := candidate[index]
	candidate = slices.Delete(candidate, index, index+1)
	candidate = slices.Insert(candidate, newIndex, moved)

	return s.commit("Move", candidate)
}

// Reorder applies a full permutation of the current step ids.
func (s *Store) Reorder(order []int) error {
	if len(order) != len(s.steps) {
		return fmt.Errorf("reorder with %d ids over %d steps: %w", len(order), len(s.steps), ErrInvalidOrder)
	}

	seen := make(map[int]bool, len(order))
	candidate := make([]*models.Step, 0, len(s.steps))

	for _, id := range order {
		if seen[id] {
			return fmt.Errorf("reorder repeats step %d: %w", id, ErrInvalidOrder)
		}

		seen[id] = true

		index := s.indexOf(id)
		if index < 0 {
			return fmt.Errorf("reorder names step %d: %w", id, ErrStepNotFound)
		}

		candidate = append(candidate, s.steps[index].Clone())
	}

	return s.commit("Reorder", candidate)
}

// commit renumbers a candidate sequence, validates the result, and swaps it
// in. Renumbering never runs against a half-valid graph: validation failures
// leave the previous state untouched.
func (s *Store) commit(op string, candidate []*models.Step) error {
	renumber(candidate)

	if err := models.ValidateSteps(candidate); err != nil {
		return newViolation(op, err)
	}

	s.steps = candidate

	return nil
}

func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.steps, func(step *models.Step) bool {
		return step.ID == id
	})
}
