package main

import (
	"context"
	"log/slog"

	"github.com/flowdeck/flowdeck/pkg/eventbus"
	"github.com/flowdeck/flowdeck/pkg/events"
)

// registerAuditLog subscribes to every domain event and writes one log line
// per occurrence, giving operators a trail of template and graph activity.
func registerAuditLog(ctx context.Context, logger *slog.Logger, bus eventbus.EventBus) error {
	handlers := map[events.EventType]eventbus.EventHandler{
		events.TemplateSavedEvent: func(ctx context.Context, event any) error {
			if saved, ok := event.(*events.TemplateSaved); ok {
				logger.InfoContext(ctx, "template saved",
					"template_id", saved.TemplateID,
					"name", saved.Name,
					"version", saved.VersionNumber,
				)
			}

			return nil
		},
		events.TemplateRestoredEvent: func(ctx context.Context, event any) error {
			if restored, ok := event.(*events.TemplateRestored); ok {
				logger.InfoContext(ctx, "template restored",
					"template_id", restored.TemplateID,
					"version_id", restored.VersionID,
					"version", restored.VersionNumber,
				)
			}

			return nil
		},
		events.TemplateClonedEvent: func(ctx context.Context, event any) error {
			if cloned, ok := event.(*events.TemplateCloned); ok {
				logger.InfoContext(ctx, "template cloned",
					"template_id", cloned.TemplateID,
					"source_template_id", cloned.SourceTemplateID,
				)
			}

			return nil
		},
		events.TemplateDeletedEvent: func(ctx context.Context, event any) error {
			if deleted, ok := event.(*events.TemplateDeleted); ok {
				logger.InfoContext(ctx, "template deleted", "template_id", deleted.TemplateID)
			}

			return nil
		},
		events.GraphGeneratedEvent: func(ctx context.Context, event any) error {
			if generated, ok := event.(*events.GraphGenerated); ok {
				logger.InfoContext(ctx, "graph generated",
					"session_id", generated.SessionID,
					"step_count", generated.StepCount,
				)
			}

			return nil
		},
	}

	for eventType, handler := range handlers {
		if err := bus.Handle(eventType, handler); err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}
