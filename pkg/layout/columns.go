// Package layout computes the rendering structure of a step sequence:
// ordered columns of parallel-grouped steps, and the connector edges a
// renderer draws between them. Both computations are pure reads over the
// graph store's snapshot.
package layout

import "github.com/flowdeck/flowdeck/pkg/models"

// Column is one rendering rank holding one or more steps.
type Column struct {
	Rank  int            `json:"rank"`
	Steps []*models.Step `json:"steps"`
}

// BuildColumns groups an ordered step sequence into ordered, non-empty
// columns. Steps sharing a parallel group land in one column positioned at
// the first occurrence of any member, wherever the other members sit in the
// sequence; untagged steps become singleton columns. Every step belongs to
// exactly one column, and a group is never split even when its members are
// non-adjacent.
//
// The function is idempotent: rebuilding over the flattened output of a
// prior call reproduces identical columns.
func BuildColumns(steps []*models.Step) []Column {
	columns := make([]Column, 0, len(steps))
	placed := make(map[int]bool, len(steps))

	for _, step := range steps {
		if placed[step.ID] {
			continue
		}

		members := []*models.Step{step}
		placed[step.ID] = true

		if step.ParallelGroup != "" {
			for _, other := range steps {
				if placed[other.ID] || other.ParallelGroup != step.ParallelGroup {
					continue
				}

				members = append(members, other)
				placed[other.ID] = true
			}
		}

		columns = append(columns, Column{Rank: len(columns), Steps: members})
	}

	return columns
}

// Flatten returns the steps of every column in column order. Feeding the
// result back into BuildColumns yields the same columns.
func Flatten(columns []Column) []*models.Step {
	steps := make([]*models.Step, 0, len(columns))
	for _, column := range columns {
		steps = append(steps, column.Steps...)
	}

	return steps
}
