// Package persistence provides the data storage abstraction layer for
// workflow templates.
package persistence

import (
	"context"

	"github.com/flowdeck/flowdeck/pkg/models"
)

// Persistence is the storage port injected into the core. Implementations
// are synchronous with a write-then-read-same-key guarantee; concurrent
// external writers are last-write-wins.
type Persistence interface {
	TemplateRepository() TemplateRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// TemplateRepository stores whole template records, version chains included.
type TemplateRepository interface {
	// List returns all templates ordered by creation time.
	List(ctx context.Context) ([]*models.Template, error)

	// GetByID returns the template with the given id, or nil when absent.
	GetByID(ctx context.Context, id string) (*models.Template, error)

	// GetByName returns the template with the given name, or nil when absent.
	GetByName(ctx context.Context, name string) (*models.Template, error)

	// Save writes the full template record, replacing any existing record
	// with the same id.
	Save(ctx context.Context, template *models.Template) error

	// Delete removes a template and its entire version chain.
	Delete(ctx context.Context, id string) error
}
