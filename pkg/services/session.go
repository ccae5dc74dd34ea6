package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/flowdeck/flowdeck/pkg/eventbus"
	"github.com/flowdeck/flowdeck/pkg/events"
	"github.com/flowdeck/flowdeck/pkg/generation"
	"github.com/flowdeck/flowdeck/pkg/graph"
	"github.com/flowdeck/flowdeck/pkg/layout"
	"github.com/flowdeck/flowdeck/pkg/models"
)

// Session manages the in-memory graph stores of active editor sessions.
// Each session has exactly one logical writer; the mutex serializes the
// occasional overlap so every mutation runs to completion before the next
// is accepted.
type Session struct {
	mu        sync.Mutex
	graphs    map[string]*graph.Store
	generator generation.Generator
	eventBus  eventbus.EventBus
	logger    *slog.Logger
}

// NewSession creates a session manager. The generator may be nil when
// AI-assisted generation is not configured.
func NewSession(generator generation.Generator, eventBus eventbus.EventBus, logger *slog.Logger) *Session {
	return &Session{
		graphs:    make(map[string]*graph.Store),
		generator: generator,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// store returns the graph store for a session, creating an empty one on
// first use. Callers must hold the mutex.
func (s *Session) store(sessionID string) *graph.Store {
	if _, exists := s.graphs[sessionID]; !exists {
		s.graphs[sessionID] = graph.NewEmptyStore()
	}

	return s.graphs[sessionID]
}

// Steps returns the ordered step sequence of a session.
func (s *Session) Steps(sessionID string) []*models.Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store(sessionID).Steps()
}

// Graph returns a snapshot of a session's graph.
func (s *Session) Graph(sessionID string) *models.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store(sessionID).Graph()
}

// SetGraph replaces a session's graph wholesale, e.g. when a template is
// opened for editing.
func (s *Session) SetGraph(sessionID string, g *models.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store(sessionID).Admit(g)
}

// InsertAfter inserts a step after the anchor; an anchor of 0 appends.
func (s *Session) InsertAfter(sessionID string, anchorID int, step *models.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store(sessionID).InsertAfter(anchorID, step)
}

// DeleteStep removes a step and renumbers the survivors.
func (s *Session) DeleteStep(sessionID string, stepID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store(sessionID).Delete(stepID)
}

// MoveStep repositions a step to a new index.
func (s *Session) MoveStep(sessionID string, stepID, newIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store(sessionID).Move(stepID, newIndex)
}

// Reorder applies a full permutation of the session's step ids.
func (s *Session) Reorder(sessionID string, order []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store(sessionID).Reorder(order)
}

// Columns computes the rendering columns of a session's graph.
func (s *Session) Columns(sessionID string) []layout.Column {
	return layout.BuildColumns(s.Steps(sessionID))
}

// Connectors computes the predecessor edges of a session's graph.
func (s *Session) Connectors(sessionID string) []layout.Connector {
	return layout.DeriveConnectors(s.Steps(sessionID))
}

// Generate asks the external collaborator for a step graph and, when the
// result passes ingestion validation, swaps it into the session. A failed
// or malformed generation leaves the session untouched.
func (s *Session) Generate(ctx context.Context, sessionID, prompt, preferences string) (*models.Graph, error) {
	if s.generator == nil {
		return nil, ErrGeneratorNotConfigured
	}

	generated, err := s.generator.Generate(ctx, prompt, preferences)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store(sessionID).Admit(generated); err != nil {
		return nil, err
	}

	s.publishGenerated(ctx, sessionID, len(generated.Steps))

	return s.store(sessionID).Graph(), nil
}

func (s *Session) publishGenerated(ctx context.Context, sessionID string, stepCount int) {
	if s.eventBus == nil {
		return
	}

	event := events.GraphGenerated{
		BaseEvent: events.NewBaseEvent(events.GraphGeneratedEvent, ""),
		SessionID: sessionID,
		StepCount: stepCount,
	}

	if err := s.eventBus.Publish(ctx, sessionID, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event",
			"event_type", events.GraphGeneratedEvent,
			"session_id", sessionID,
			"error", err,
		)
	}
}
