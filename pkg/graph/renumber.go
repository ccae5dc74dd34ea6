package graph

import "github.com/flowdeck/flowdeck/pkg/models"

// renumber assigns dense ids 1..N to an ordered candidate sequence and
// rewrites every cross-reference through the position-derived mapping from
// old id to new id. References to ids with no surviving step (the deleted
// step, or a stale id on an inserted step) are dropped from the referencing
// set rather than treated as an error.
//
// O(N) over steps plus their reference sets, and order-stable: two steps
// that keep their relative order keep increasing ids.
func renumber(steps []*models.Step) {
	mapping := make(map[int]int, len(steps))

	for index, step := range steps {
		if step.ID > 0 {
			mapping[step.ID] = index + 1
		}
	}

	for index, step := range steps {
		step.DependsOn = remap(step.DependsOn, mapping)

		if step.Input.Kind == models.InputPriorOutput {
			step.Input.StepIDs = remap(step.Input.StepIDs, mapping)
		}

		step.ID = index + 1
	}
}

func remap(refs []int, mapping map[int]int) []int {
	if len(refs) == 0 {
		return refs
	}

	remapped := make([]int, 0, len(refs))

	for _, ref := range refs {
		if mapped, ok := mapping[ref]; ok {
			remapped = append(remapped, mapped)
		}
	}

	return remapped
}
