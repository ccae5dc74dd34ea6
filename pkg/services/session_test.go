package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/pkg/generation"
	"github.com/flowdeck/flowdeck/pkg/graph"
	"github.com/flowdeck/flowdeck/pkg/models"
)

// stubGenerator returns a fixed graph or error without any HTTP round trip.
type stubGenerator struct {
	graph *models.Graph
	err   error
}

func (g *stubGenerator) Generate(_ context.Context, _, _ string) (*models.Graph, error) {
	if g.err != nil {
		return nil, g.err
	}

	return g.graph.Clone(), nil
}

func newSessionService(generator generation.Generator) *Session {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewSession(generator, nil, logger)
}

func TestSession_EmptyOnFirstUse(t *testing.T) {
	service := newSessionService(nil)

	assert.Empty(t, service.Steps("session-1"))
	assert.Empty(t, service.Graph("session-1").Steps)
}

func TestSession_EditSequence(t *testing.T) {
	service := newSessionService(nil)

	step := func(agentType string) *models.Step {
		return &models.Step{
			AgentType: agentType,
			Timing:    models.NewAutoTiming(),
			Input:     models.NewPromptInput("do the thing"),
		}
	}

	require.NoError(t, service.InsertAfter("session-1", 0, step("collector")))
	require.NoError(t, service.InsertAfter("session-1", 0, step("writer")))
	require.NoError(t, service.InsertAfter("session-1", 1, step("reviewer")))

	steps := service.Steps("session-1")
	require.Len(t, steps, 3)
	assert.Equal(t, "collector", steps[0].AgentType)
	assert.Equal(t, "reviewer", steps[1].AgentType)
	assert.Equal(t, "writer", steps[2].AgentType)

	require.NoError(t, service.MoveStep("session-1", 3, 0))
	assert.Equal(t, "writer", service.Steps("session-1")[0].AgentType)

	require.NoError(t, service.Reorder("session-1", []int{3, 2, 1}))
	require.NoError(t, service.DeleteStep("session-1", 1))
	assert.Len(t, service.Steps("session-1"), 2)

	err := service.DeleteStep("session-1", 9)
	assert.True(t, graph.IsStepNotFound(err))
}

func TestSession_SessionsAreIsolated(t *testing.T) {
	service := newSessionService(nil)

	require.NoError(t, service.InsertAfter("session-1", 0, &models.Step{
		AgentType: "collector",
		Timing:    models.NewAutoTiming(),
		Input:     models.NewPromptInput("x"),
	}))

	assert.Len(t, service.Steps("session-1"), 1)
	assert.Empty(t, service.Steps("session-2"))
}

func TestSession_SetGraph(t *testing.T) {
	service := newSessionService(nil)

	valid := &models.Graph{Steps: []*models.Step{
		{ID: 1, AgentType: "collector", Timing: models.NewAutoTiming(), Input: models.NewPromptInput("x")},
	}}
	require.NoError(t, service.SetGraph("session-1", valid))
	assert.Len(t, service.Steps("session-1"), 1)

	sparse := &models.Graph{Steps: []*models.Step{
		{ID: 2, AgentType: "collector", Timing: models.NewAutoTiming(), Input: models.NewPromptInput("x")},
	}}
	err := service.SetGraph("session-1", sparse)
	require.Error(t, err)
	assert.True(t, graph.IsStructuralViolation(err))

	// The previously admitted graph survives the rejection.
	assert.Len(t, service.Steps("session-1"), 1)
}

func TestSession_Layout(t *testing.T) {
	service := newSessionService(nil)

	require.NoError(t, service.SetGraph("session-1", &models.Graph{Steps: []*models.Step{
		{ID: 1, AgentType: "a", ParallelGroup: "g", Timing: models.NewAutoTiming(), Input: models.NewPromptInput("x")},
		{ID: 2, AgentType: "b", Timing: models.NewAutoTiming(), Input: models.NewPromptInput("x")},
		{ID: 3, AgentType: "c", ParallelGroup: "g", Timing: models.NewAutoTiming(), Input: models.NewPromptInput("x")},
	}}))

	columns := service.Columns("session-1")
	require.Len(t, columns, 2)
	assert.Len(t, columns[0].Steps, 2)

	connectors := service.Connectors("session-1")
	assert.NotEmpty(t, connectors)
}

func TestSession_Generate(t *testing.T) {
	generated := &models.Graph{Steps: []*models.Step{
		{ID: 1, AgentType: "collector", Timing: models.NewAutoTiming(), Input: models.NewPromptInput("collect")},
		{ID: 2, AgentType: "writer", Timing: models.NewAutoTiming(), Input: models.NewPromptInput("write"), DependsOn: []int{1}},
	}}

	service := newSessionService(&stubGenerator{graph: generated})

	result, err := service.Generate(t.Context(), "session-1", "build a digest", "")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Steps, 2)
	assert.Len(t, service.Steps("session-1"), 2)
}

func TestSession_Generate_NotConfigured(t *testing.T) {
	service := newSessionService(nil)

	_, err := service.Generate(t.Context(), "session-1", "build a digest", "")
	assert.ErrorIs(t, err, ErrGeneratorNotConfigured)
}

func TestSession_Generate_FailureLeavesSessionUntouched(t *testing.T) {
	service := newSessionService(&stubGenerator{
		err: &generation.GenerationError{Reason: "upstream returned 500"},
	})

	require.NoError(t, service.InsertAfter("session-1", 0, &models.Step{
		AgentType: "collector",
		Timing:    models.NewAutoTiming(),
		Input:     models.NewPromptInput("x"),
	}))

	_, err := service.Generate(t.Context(), "session-1", "build a digest", "")
	require.Error(t, err)
	assert.True(t, generation.IsUpstreamGenerationFailure(err))
	assert.Len(t, service.Steps("session-1"), 1)
}

func TestSession_Generate_MalformedResultRejected(t *testing.T) {
	service := newSessionService(&stubGenerator{graph: &models.Graph{Steps: []*models.Step{
		{ID: 3, AgentType: "collector", Timing: models.NewAutoTiming(), Input: models.NewPromptInput("x")},
	}}})

	_, err := service.Generate(t.Context(), "session-1", "build a digest", "")
	require.Error(t, err)
	assert.True(t, graph.IsStructuralViolation(err))
	assert.Empty(t, service.Steps("session-1"))
}
