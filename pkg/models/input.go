package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// InputKind discriminates the input variants a step can carry.
type InputKind string

const (
	InputPrompt      InputKind = "prompt"
	InputScript      InputKind = "script"
	InputPriorOutput InputKind = "prior_output"
)

// InputConfig is a tagged variant describing where a step takes its input
// from. Only the fields belonging to its kind are ever set.
type InputConfig struct {
	Kind    InputKind `json:"kind"`
	Text    string    `json:"text,omitempty"`          // Prompt only
	Content string    `json:"content,omitempty"`       // Script only
	StepIDs []int     `json:"prior_step_ids,omitempty"` // PriorOutput only
}

func NewPromptInput(text string) InputConfig {
	return InputConfig{Kind: InputPrompt, Text: text}
}

func NewScriptInput(content string) InputConfig {
	return InputConfig{Kind: InputScript, Content: content}
}

func NewPriorOutputInput(stepIDs []int) InputConfig {
	return InputConfig{Kind: InputPriorOutput, StepIDs: slices.Clone(stepIDs)}
}

func (i InputConfig) clone() InputConfig {
	clone := i
	clone.StepIDs = slices.Clone(i.StepIDs)

	return clone
}

// UnmarshalJSON decodes an input variant and rejects field combinations that
// do not belong to the declared kind. A missing kind defaults to prompt.
func (i *InputConfig) UnmarshalJSON(data []byte) error {
	type plain InputConfig

	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	if decoded.Kind == "" {
		decoded.Kind = InputPrompt
	}

	switch decoded.Kind {
	case InputPrompt:
		if decoded.Content != "" || len(decoded.StepIDs) > 0 {
			return fmt.Errorf("input kind %q accepts only text", decoded.Kind)
		}
	case InputScript:
		if decoded.Text != "" || len(decoded.StepIDs) > 0 {
			return fmt.Errorf("input kind %q accepts only content", decoded.Kind)
		}
	case InputPriorOutput:
		if decoded.Text != "" || decoded.Content != "" {
			return fmt.Errorf("input kind %q accepts only prior step ids", decoded.Kind)
		}
	default:
		return fmt.Errorf("unknown input kind: %q", decoded.Kind)
	}

	*i = InputConfig(decoded)

	return nil
}
