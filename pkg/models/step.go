// Package models defines the core domain models for the workflow editor.
package models

import "slices"

// ExecutionStatus is UI-only state carried on a step. It never participates
// in structural validation.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// Step is one node in the workflow graph. Step ids are dense: a graph with
// N steps uses exactly the ids 1..N.
type Step struct {
	// ID is assigned by renumbering; an unsaved step carries zero until the
	// store admits it, so it is not validated here.
	ID                int             `json:"step_id"`
	AgentType         string          `json:"agent_type"         validate:"required"`
	AgentIDs          []string        `json:"agent_ids,omitempty"` // references into the external agent catalog, not owned
	ActionDescription string          `json:"action_description"`
	Timing            TimingLogic     `json:"timing_logic"`
	DependsOn         []int           `json:"depends_on,omitempty"`
	ParallelGroup     string          `json:"parallel_group,omitempty"`
	Input             InputConfig     `json:"input_config"`
	OutputStorage     string          `json:"output_storage,omitempty"`
	ExecutionStatus   ExecutionStatus `json:"execution_status,omitempty"`
}

// Clone returns a deep copy of the step.
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}

	clone := *s
	clone.AgentIDs = slices.Clone(s.AgentIDs)
	clone.DependsOn = slices.Clone(s.DependsOn)
	clone.Input = s.Input.clone()

	return &clone
}

// DependsOnStep reports whether the step carries an explicit dependency on id.
func (s *Step) DependsOnStep(id int) bool {
	return slices.Contains(s.DependsOn, id)
}
