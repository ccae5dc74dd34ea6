package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowdeck/flowdeck/pkg/eventbus"
	"github.com/flowdeck/flowdeck/pkg/events"
	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/otelhelper"
	"github.com/flowdeck/flowdeck/pkg/persistence"
)

// Template implements the named template store with its append-only version
// chain. Every mutation is all-or-nothing: validation happens before the
// first write, and a template record with its chain is persisted as one unit.
//
// Unknown template or version ids yield nil results rather than errors; a
// concurrently deleted template is a routine race, not a failure.
type Template struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewTemplate creates a new template service. The event bus and tracer may
// be nil; events and spans are then skipped.
func NewTemplate(p persistence.Persistence, eventBus eventbus.EventBus, tracer trace.Tracer, logger *slog.Logger) *Template {
	return &Template{
		persistence: p,
		eventBus:    eventBus,
		tracer:      tracer,
		logger:      logger,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Template) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// SaveRequest carries everything one save needs.
type SaveRequest struct {
	Name        string `validate:"required,min=1"`
	Description string
	Tags        []string
	Graph       *models.Graph `validate:"required"`
	ChangeNote  string
}

// Save persists a graph under a name. A new name creates a template with an
// empty version chain; an existing name first appends a version snapshotting
// the currently stored graph, stamped with the template's prior updated
// time, and then replaces the stored graph.
func (s *Template) Save(ctx context.Context, req SaveRequest) (*models.Template, error) {
	ctx, span := s.startSpan(ctx, "template.save", attribute.String(otelhelper.TemplateNameKey, req.Name))
	defer span.End()

	if req.Name == "" {
		return nil, ErrTemplateNameRequired
	}

	if req.Graph == nil {
		return nil, ErrGraphRequired
	}

	if err := req.Graph.Validate(); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	repo := s.persistence.TemplateRepository()

	existing, err := repo.GetByName(ctx, req.Name)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	now := time.Now().UTC()

	if existing == nil {
		template := &models.Template{
			ID:          uuid.New().String(),
			Name:        req.Name,
			Description: req.Description,
			Tags:        normalizeTags(req.Tags),
			Workflow:    req.Graph.Clone(),
			CreatedAt:   now,
			UpdatedAt:   now,
			Versions:    make([]*models.Version, 0),
		}

		if err := repo.Save(ctx, template); err != nil {
			otelhelper.SetError(span, err)

			return nil, err
		}

		s.publish(ctx, template.ID, events.TemplateSaved{
			BaseEvent: events.NewBaseEvent(events.TemplateSavedEvent, template.ID),
			Name:      template.Name,
		})

		return template, nil
	}

	version := &models.Version{
		ID:         uuid.New().String(),
		Number:     len(existing.Versions) + 1,
		Workflow:   existing.Workflow, // pre-save graph, snapshotted before the overwrite
		SavedAt:    existing.UpdatedAt,
		ChangeNote: req.ChangeNote,
	}

	existing.Versions = append(existing.Versions, version)
	existing.Workflow = req.Graph.Clone()
	existing.Description = req.Description
	existing.Tags = normalizeTags(req.Tags)
	existing.UpdatedAt = now

	if err := repo.Save(ctx, existing); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	s.publish(ctx, existing.ID, events.TemplateSaved{
		BaseEvent:     events.NewBaseEvent(events.TemplateSavedEvent, existing.ID),
		Name:          existing.Name,
		VersionNumber: version.Number,
	})

	return existing, nil
}

// Restore swaps the current graph for a prior version's snapshot, first
// appending one more version that captures the graph about to be discarded.
// Unknown template or version ids return nil with the store unchanged.
func (s *Template) Restore(ctx context.Context, templateID, versionID string) (*models.Template, error) {
	ctx, span := s.startSpan(ctx, "template.restore",
		attribute.String(otelhelper.TemplateIDKey, templateID),
		attribute.String(otelhelper.VersionIDKey, versionID),
	)
	defer span.End()

	repo := s.persistence.TemplateRepository()

	template, err := repo.GetByID(ctx, templateID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if template == nil {
		return nil, nil
	}

	target := template.VersionByID(versionID)
	if target == nil {
		return nil, nil
	}

	snapshot := &models.Version{
		ID:         uuid.New().String(),
		Number:     len(template.Versions) + 1,
		Workflow:   template.Workflow,
		SavedAt:    template.UpdatedAt,
		ChangeNote: fmt.Sprintf("Auto-snapshot before restoring version %d", target.Number),
	}

	template.Versions = append(template.Versions, snapshot)
	template.Workflow = target.Workflow.Clone()
	template.UpdatedAt = time.Now().UTC()

	if err := repo.Save(ctx, template); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	s.publish(ctx, template.ID, events.TemplateRestored{
		BaseEvent:     events.NewBaseEvent(events.TemplateRestoredEvent, template.ID),
		VersionID:     target.ID,
		VersionNumber: target.Number,
	})

	return template, nil
}

// Clone creates a new template from the current graph of an existing one:
// fresh identity, derived name, empty version chain. History is not carried
// over, and the source template is never mutated. An unknown id returns nil.
func (s *Template) Clone(ctx context.Context, templateID string) (*models.Template, error) {
	ctx, span := s.startSpan(ctx, "template.clone", attribute.String(otelhelper.TemplateIDKey, templateID))
	defer span.End()

	repo := s.persistence.TemplateRepository()

	source, err := repo.GetByID(ctx, templateID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if source == nil {
		return nil, nil
	}

	name, err := s.uniqueName(ctx, source.Name+" (copy)")
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	now := time.Now().UTC()
	clone := &models.Template{
		ID:          uuid.New().String(),
		Name:        name,
		Description: source.Description,
		Tags:        normalizeTags(source.Tags),
		Workflow:    source.Workflow.Clone(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Versions:    make([]*models.Version, 0),
	}

	if err := repo.Save(ctx, clone); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	s.publish(ctx, clone.ID, events.TemplateCloned{
		BaseEvent:        events.NewBaseEvent(events.TemplateClonedEvent, clone.ID),
		SourceTemplateID: source.ID,
	})

	return clone, nil
}

// Delete removes a template and its entire chain irrevocably. Returns false
// when the id named nothing.
func (s *Template) Delete(ctx context.Context, templateID string) (bool, error) {
	ctx, span := s.startSpan(ctx, "template.delete", attribute.String(otelhelper.TemplateIDKey, templateID))
	defer span.End()

	repo := s.persistence.TemplateRepository()

	template, err := repo.GetByID(ctx, templateID)
	if err != nil {
		otelhelper.SetError(span, err)

		return false, err
	}

	if template == nil {
		return false, nil
	}

	if err := repo.Delete(ctx, templateID); err != nil {
		otelhelper.SetError(span, err)

		return false, err
	}

	s.publish(ctx, templateID, events.TemplateDeleted{
		BaseEvent: events.NewBaseEvent(events.TemplateDeletedEvent, templateID),
	})

	return true, nil
}

// List returns all templates.
func (s *Template) List(ctx context.Context) ([]*models.Template, error) {
	return s.persistence.TemplateRepository().List(ctx)
}

// GetByID returns one template, or nil when absent.
func (s *Template) GetByID(ctx context.Context, templateID string) (*models.Template, error) {
	return s.persistence.TemplateRepository().GetByID(ctx, templateID)
}

// uniqueName resolves name collisions on clone and import by suffixing a
// counter.
func (s *Template) uniqueName(ctx context.Context, base string) (string, error) {
	repo := s.persistence.TemplateRepository()

	name := base
	for counter := 2; ; counter++ {
		existing, err := repo.GetByName(ctx, name)
		if err != nil {
			return "", err
		}

		if existing == nil {
			return name, nil
		}

		name = fmt.Sprintf("%s %d", base, counter)
	}
}

func (s *Template) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.Publish(ctx, key, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (s *Template) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if s.tracer == nil {
		return trace.NewNoopTracerProvider().Tracer("").Start(ctx, name)
	}

	return otelhelper.StartSpan(ctx, s.tracer, name, attrs...)
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return make([]string, 0)
	}

	return tags
}
