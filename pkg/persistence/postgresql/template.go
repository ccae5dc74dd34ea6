package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowdeck/flowdeck/pkg/models"
)

// TemplateRepository handles template-related database operations.
type TemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sql.DB, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

// List returns all templates ordered by creation time.
func (r *TemplateRepository) List(ctx context.Context) ([]*models.Template, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , tags
		  , workflow
		  , created_at
		  , updated_at
		FROM templates
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}

	defer func(ctx context.Context, r *TemplateRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	templates := make([]*models.Template, 0)

	for rows.Next() {
		template, err := r.scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}

		err = r.loadVersions(ctx, template)
		if err != nil {
			return nil, fmt.Errorf("failed to load versions: %w", err)
		}

		templates = append(templates, template)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

// GetByID returns the template with the given id, or nil when absent.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , tags
		  , workflow
		  , created_at
		  , updated_at
		FROM templates
		WHERE id = $1
	`

	return r.getOne(ctx, query, id)
}

// GetByName returns the template with the given name, or nil when absent.
func (r *TemplateRepository) GetByName(ctx context.Context, name string) (*models.Template, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , tags
		  , workflow
		  , created_at
		  , updated_at
		FROM templates
		WHERE name = $1
	`

	return r.getOne(ctx, query, name)
}

func (r *TemplateRepository) getOne(ctx context.Context, query, arg string) (*models.Template, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	template, err := r.scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	if err := r.loadVersions(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to load versions: %w", err)
	}

	return template, nil
}

// Save writes the full template record, replacing the stored record and its
// version chain in one transaction.
func (r *TemplateRepository) Save(ctx context.Context, template *models.Template) error {
	tagsJSON, err := json.Marshal(template.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	workflowJSON, err := json.Marshal(template.Workflow)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	transaction, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	upsert := `
		INSERT INTO templates (id, name, description, tags, workflow, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			tags = EXCLUDED.tags,
			workflow = EXCLUDED.workflow,
			updated_at = EXCLUDED.updated_at
	`

	_, err = transaction.ExecContext(ctx, upsert,
		template.ID,
		template.Name,
		template.Description,
		tagsJSON,
		workflowJSON,
		template.CreatedAt,
		template.UpdatedAt,
	)
	if err != nil {
		_ = transaction.Rollback()

		return fmt.Errorf("failed to upsert template %s: %w", template.ID, err)
	}

	// Versions are append-only in the domain; rewriting the chain keeps the
	// stored record identical to the in-memory one.
	_, err = transaction.ExecContext(ctx, "DELETE FROM template_versions WHERE template_id = $1", template.ID)
	if err != nil {
		_ = transaction.Rollback()

		return fmt.Errorf("failed to clear version chain for %s: %w", template.ID, err)
	}

	insertVersion := `
		INSERT INTO template_versions (id, template_id, version, workflow, saved_at, change_note)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, version := range template.Versions {
		versionWorkflow, err := json.Marshal(version.Workflow)
		if err != nil {
			_ = transaction.Rollback()

			return fmt.Errorf("failed to marshal version %d workflow: %w", version.Number, err)
		}

		_, err = transaction.ExecContext(ctx, insertVersion,
			version.ID,
			template.ID,
			version.Number,
			versionWorkflow,
			version.SavedAt,
			version.ChangeNote,
		)
		if err != nil {
			_ = transaction.Rollback()

			return fmt.Errorf("failed to insert version %d for %s: %w", version.Number, template.ID, err)
		}
	}

	err = transaction.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit template %s: %w", template.ID, err)
	}

	return nil
}

// Delete removes a template and its version chain.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *TemplateRepository) scanTemplate(row rowScanner) (*models.Template, error) {
	var (
		template     models.Template
		tagsJSON     []byte
		workflowJSON []byte
	)

	err := row.Scan(
		&template.ID,
		&template.Name,
		&template.Description,
		&tagsJSON,
		&workflowJSON,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tagsJSON, &template.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}

	if err := json.Unmarshal(workflowJSON, &template.Workflow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}

	return &template, nil
}

func (r *TemplateRepository) loadVersions(ctx context.Context, template *models.Template) error {
	query := `
		SELECT
			id
		  , version
		  , workflow
		  , saved_at
		  , change_note
		FROM template_versions
		WHERE template_id = $1
		ORDER BY version ASC
	`

	rows, err := r.db.QueryContext(ctx, query, template.ID)
	if err != nil {
		return fmt.Errorf("failed to query versions: %w", err)
	}

	defer func(ctx context.Context, r *TemplateRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	template.Versions = make([]*models.Version, 0)

	for rows.Next() {
		var (
			version      models.Version
			workflowJSON []byte
		)

		err := rows.Scan(&version.ID, &version.Number, &workflowJSON, &version.SavedAt, &version.ChangeNote)
		if err != nil {
			return fmt.Errorf("failed to scan version: %w", err)
		}

		if err := json.Unmarshal(workflowJSON, &version.Workflow); err != nil {
			return fmt.Errorf("failed to unmarshal version workflow: %w", err)
		}

		template.Versions = append(template.Versions, &version)
	}

	return rows.Err()
}
