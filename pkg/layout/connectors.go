package layout

import "github.com/flowdeck/flowdeck/pkg/models"

// EdgeKind distinguishes user-authored dependency edges from the derived
// previous-step fallback, so a renderer never confuses the heuristic with an
// explicit edge.
type EdgeKind string

const (
	EdgeExplicit EdgeKind = "explicit"
	EdgeDerived  EdgeKind = "derived"
)

// Connector is one predecessor edge to draw: From precedes To.
type Connector struct {
	From int      `json:"from"`
	To   int      `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// DeriveConnectors computes the effective predecessor set of every step.
// A step with explicit dependencies contributes one explicit edge per entry;
// a step without any, except the first in sequence, contributes one derived
// edge from the step immediately before it. Edges whose predecessor id is no
// longer present are silently omitted, which tolerates stale references from
// a consumer that has not re-synchronized yet. No cycle detection happens
// here; the store rejects cycles at edit time.
func DeriveConnectors(steps []*models.Step) []Connector {
	present := make(map[int]bool, len(steps))
	for _, step := range steps {
		present[step.ID] = true
	}

	connectors := make([]Connector, 0, len(steps))

	for i, step := range steps {
		if len(step.DependsOn) > 0 {
			for _, dep := range step.DependsOn {
				if !present[dep] {
					continue
				}

				connectors = append(connectors, Connector{From: dep, To: step.ID, Kind: EdgeExplicit})
			}

			continue
		}

		if i > 0 {
			connectors = append(connectors, Connector{From: steps[i-1].ID, To: step.ID, Kind: EdgeDerived})
		}
	}

	return connectors
}
