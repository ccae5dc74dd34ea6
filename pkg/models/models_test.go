package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimingLogic_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    TimingLogic
		wantErr bool
	}{
		{
			name:  "manual",
			input: `{"kind":"manual"}`,
			want:  NewManualTiming(),
		},
		{
			name:  "missing kind defaults to manual",
			input: `{}`,
			want:  NewManualTiming(),
		},
		{
			name:  "trigger with condition",
			input: `{"kind":"trigger","condition":"file_uploaded"}`,
			want:  NewTriggerTiming("file_uploaded"),
		},
		{
			name:  "recurring with period and time",
			input: `{"kind":"recurring","period":"daily","time":"09:00"}`,
			want:  NewRecurringTiming("daily", "09:00", ""),
		},
		{
			name:    "trigger without condition",
			input:   `{"kind":"trigger"}`,
			wantErr: true,
		},
		{
			name:    "recurring without period",
			input:   `{"kind":"recurring","time":"09:00"}`,
			wantErr: true,
		},
		{
			name:    "manual with recurring fields",
			input:   `{"kind":"manual","period":"daily"}`,
			wantErr: true,
		},
		{
			name:    "unknown kind",
			input:   `{"kind":"sometimes"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var timing TimingLogic

			err := json.Unmarshal([]byte(tt.input), &timing)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, timing)
		})
	}
}

func TestInputConfig_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    InputConfig
		wantErr bool
	}{
		{
			name:  "prompt",
			input: `{"kind":"prompt","text":"summarize the report"}`,
			want:  NewPromptInput("summarize the report"),
		},
		{
			name:  "prior output",
			input: `{"kind":"prior_output","prior_step_ids":[1,2]}`,
			want:  NewPriorOutputInput([]int{1, 2}),
		},
		{
			name:    "prompt with script content",
			input:   `{"kind":"prompt","text":"x","content":"#!/bin/sh"}`,
			wantErr: true,
		},
		{
			name:    "script with prior step ids",
			input:   `{"kind":"script","content":"x","prior_step_ids":[1]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var input InputConfig

			err := json.Unmarshal([]byte(tt.input), &input)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, input)
		})
	}
}

func TestValidateSteps(t *testing.T) {
	t.Parallel()

	step := func(id int, deps ...int) *Step {
		return &Step{
			ID:        id,
			AgentType: "writer",
			Timing:    NewAutoTiming(),
			Input:     NewPromptInput("do the thing"),
			DependsOn: deps,
		}
	}

	t.Run("valid linear graph", func(t *testing.T) {
		t.Parallel()

		err := ValidateSteps([]*Step{step(1), step(2, 1), step(3, 2)})
		assert.NoError(t, err)
	})

	t.Run("empty graph is valid", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, ValidateSteps(nil))
	})

	t.Run("sparse ids", func(t *testing.T) {
		t.Parallel()

		err := ValidateSteps([]*Step{step(1), step(3)})
		assert.ErrorIs(t, err, ErrSparseStepIDs)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		t.Parallel()

		err := ValidateSteps([]*Step{step(1), step(1)})
		assert.ErrorIs(t, err, ErrDuplicateStepID)
	})

	t.Run("dangling dependency", func(t *testing.T) {
		t.Parallel()

		err := ValidateSteps([]*Step{step(1), step(2, 7)})
		assert.ErrorIs(t, err, ErrDanglingReference)
	})

	t.Run("self reference", func(t *testing.T) {
		t.Parallel()

		err := ValidateSteps([]*Step{step(1, 1)})
		assert.ErrorIs(t, err, ErrSelfReference)
	})

	t.Run("explicit cycle", func(t *testing.T) {
		t.Parallel()

		err := ValidateSteps([]*Step{step(1, 3), step(2, 1), step(3, 2)})
		assert.ErrorIs(t, err, ErrCycleDetected)
	})

	t.Run("cycle through implicit fallback edge", func(t *testing.T) {
		t.Parallel()

		// Step 2 has no explicit deps, so it implicitly follows step 1;
		// step 1 explicitly depending on step 2 closes the loop.
		err := ValidateSteps([]*Step{step(1, 2), step(2)})
		assert.ErrorIs(t, err, ErrCycleDetected)
	})

	t.Run("dangling prior output reference", func(t *testing.T) {
		t.Parallel()

		bad := step(2)
		bad.Input = NewPriorOutputInput([]int{9})

		err := ValidateSteps([]*Step{step(1), bad})
		assert.ErrorIs(t, err, ErrDanglingReference)
	})
}

func TestTemplate_Clone(t *testing.T) {
	t.Parallel()

	template := &Template{
		ID:   "tpl-1",
		Name: "Daily digest",
		Tags: []string{"reporting"},
		Workflow: &Graph{Steps: []*Step{
			{ID: 1, AgentType: "collector", Timing: NewAutoTiming(), Input: NewPromptInput("collect")},
		}},
		Versions: []*Version{
			{ID: "v-1", Number: 1, Workflow: &Graph{Steps: []*Step{}}},
		},
	}

	clone := template.Clone()

	require.NotSame(t, template, clone)
	assert.Equal(t, template, clone)

	clone.Workflow.Steps[0].AgentType = "changed"
	clone.Tags[0] = "changed"
	assert.Equal(t, "collector", template.Workflow.Steps[0].AgentType)
	assert.Equal(t, "reporting", template.Tags[0])
}

func TestGraph_StepByID(t *testing.T) {
	t.Parallel()

	graph := &Graph{Steps: []*Step{
		{ID: 1, AgentType: "a", Timing: NewAutoTiming(), Input: NewPromptInput("x")},
		{ID: 2, AgentType: "b", Timing: NewAutoTiming(), Input: NewPromptInput("y")},
	}}

	require.NotNil(t, graph.StepByID(2))
	assert.Equal(t, "b", graph.StepByID(2).AgentType)
	assert.Nil(t, graph.StepByID(5))
}
