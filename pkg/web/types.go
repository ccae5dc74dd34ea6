// Package web provides HTTP request and response types for the template
// editor API.
package web

import "github.com/flowdeck/flowdeck/pkg/models"

// SaveTemplateRequest represents the request body for saving a graph under
// a template name.
type SaveTemplateRequest struct {
	Name        string        `json:"name"        validate:"required,min=1"`
	Description string        `json:"description"`
	Tags        []string      `json:"tags"`
	Workflow    *models.Graph `json:"workflow"    validate:"required"`
	ChangeNote  string        `json:"change_note"`
}

// SetGraphRequest replaces a session graph wholesale.
type SetGraphRequest struct {
	Workflow *models.Graph `json:"workflow" validate:"required"`
}

// InsertStepRequest represents the request body for inserting a step. An
// After of 0 appends at the end of the sequence.
type InsertStepRequest struct {
	After int          `json:"after"          validate:"min=0"`
	Step  *models.Step `json:"step"           validate:"required"`
}

// MoveStepRequest repositions a step to a new index.
type MoveStepRequest struct {
	NewIndex int `json:"new_index" validate:"min=0"`
}

// ReorderRequest applies a full permutation of the current step ids.
type ReorderRequest struct {
	Order []int `json:"order" validate:"required,min=1"`
}

// GenerateRequest asks the external collaborator for a step graph.
type GenerateRequest struct {
	Prompt      string `json:"prompt"      validate:"required"`
	Preferences string `json:"preferences"`
}
