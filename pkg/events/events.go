// Package events defines event types and structures for template lifecycle
// notifications.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const Topic = "flowdeck.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Template lifecycle events.
	TemplateSavedEvent    EventType = "template.saved"
	TemplateRestoredEvent EventType = "template.restored"
	TemplateClonedEvent   EventType = "template.cloned"
	TemplateDeletedEvent  EventType = "template.deleted"

	// Session graph events.
	GraphGeneratedEvent EventType = "graph.generated"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	TemplateID string    `json:"template_id,omitempty"`
}

func NewBaseEvent(eventType EventType, templateID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		TemplateID: templateID,
	}
}

// TemplateSaved is published after a save, whether it created the template
// or appended a version to an existing one.
type TemplateSaved struct {
	BaseEvent

	Name          string `json:"name"`
	VersionNumber int    `json:"version_number"` // 0 on first save, chain length afterwards
}

func (t TemplateSaved) GetType() EventType {
	return TemplateSavedEvent
}

// TemplateRestored is published after a version restore.
type TemplateRestored struct {
	BaseEvent

	VersionID     string `json:"version_id"`
	VersionNumber int    `json:"version_number"`
}

func (t TemplateRestored) GetType() EventType {
	return TemplateRestoredEvent
}

// TemplateCloned is published after a clone; TemplateID names the clone.
type TemplateCloned struct {
	BaseEvent

	SourceTemplateID string `json:"source_template_id"`
}

func (t TemplateCloned) GetType() EventType {
	return TemplateClonedEvent
}

// TemplateDeleted is published after a template and its chain are removed.
type TemplateDeleted struct {
	BaseEvent
}

func (t TemplateDeleted) GetType() EventType {
	return TemplateDeletedEvent
}

// GraphGenerated is published after an externally generated graph passes
// ingestion validation and replaces a session graph.
type GraphGenerated struct {
	BaseEvent

	SessionID string `json:"session_id"`
	StepCount int    `json:"step_count"`
}

func (g GraphGenerated) GetType() EventType {
	return GraphGeneratedEvent
}
