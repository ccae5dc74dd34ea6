package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	redis "github.com/redis/go-redis/v9"

	"github.com/flowdeck/flowdeck/pkg/models"
)

const (
	templateKeyPrefix = "flowdeck:templates:"
	nameIndexKey      = "flowdeck:template_names"
)

// TemplateRepository handles template-related Redis operations.
type TemplateRepository struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(client redis.UniversalClient, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{client: client, logger: logger}
}

// List returns all templates ordered by creation time.
func (r *TemplateRepository) List(ctx context.Context) ([]*models.Template, error) {
	templates := make([]*models.Template, 0)

	iter := r.client.Scan(ctx, 0, templateKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		template, err := r.getByKey(ctx, iter.Val())
		if err != nil {
			return nil, err
		}

		if template != nil {
			templates = append(templates, template)
		}
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan templates: %w", err)
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].CreatedAt.Before(templates[j].CreatedAt)
	})

	return templates, nil
}

// GetByID returns the template with the given id, or nil when absent.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	return r.getByKey(ctx, templateKeyPrefix+id)
}

// GetByName returns the template with the given name, or nil when absent.
func (r *TemplateRepository) GetByName(ctx context.Context, name string) (*models.Template, error) {
	id, err := r.client.HGet(ctx, nameIndexKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to resolve template name %q: %w", name, err)
	}

	return r.GetByID(ctx, id)
}

// Save writes the full template record and updates the name index.
func (r *TemplateRepository) Save(ctx context.Context, template *models.Template) error {
	data, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("failed to marshal template %s: %w", template.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, templateKeyPrefix+template.ID, data, 0)
	pipe.HSet(ctx, nameIndexKey, template.Name, template.ID)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save template %s: %w", template.ID, err)
	}

	return nil
}

// Delete removes a template and its name index entry. Deleting an absent
// template is a no-op.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	template, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if template == nil {
		return nil
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, templateKeyPrefix+id)
	pipe.HDel(ctx, nameIndexKey, template.Name)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}

	return nil
}

func (r *TemplateRepository) getByKey(ctx context.Context, key string) (*models.Template, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}

	var template models.Template

	err = json.Unmarshal(data, &template)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return &template, nil
}
