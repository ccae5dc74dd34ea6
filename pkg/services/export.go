package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/flowdeck/flowdeck/pkg/models"
)

// importSchema pins the required shape of an imported template record. The
// graph invariants are checked separately after decoding; the schema only
// rejects records missing their identity or workflow.
const importSchema = `{
	"type": "object",
	"required": ["name", "workflow"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"tags": {"type": "array", "items": {"type": "string"}},
		"workflow": {
			"type": "object",
			"required": ["steps"],
			"properties": {
				"metadata": {"type": "object"},
				"steps": {"type": "array"}
			}
		},
		"versions": {"type": "array"}
	}
}`

// Export serializes one template record verbatim. An unknown id returns nil.
func (s *Template) Export(ctx context.Context, templateID string) ([]byte, error) {
	template, err := s.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if template == nil {
		return nil, nil
	}

	data, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize template %s: %w", templateID, err)
	}

	return data, nil
}

// Import parses a serialized template record. A record failing shape
// validation is rejected with the store untouched. On success the template
// gets a fresh id and timestamps, keeps any embedded version chain, and
// missing tags/versions default to empty collections. A name collision is
// resolved the same way clone resolves one.
func (s *Template) Import(ctx context.Context, data []byte) (*models.Template, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(importSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedImport, err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrMalformedImport, result.Errors())
	}

	var template models.Template

	err = json.Unmarshal(data, &template)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedImport, err)
	}

	if err := template.Workflow.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedImport, err)
	}

	name, err := s.uniqueName(ctx, template.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	template.ID = uuid.New().String()
	template.Name = name
	template.CreatedAt = now
	template.UpdatedAt = now
	template.Tags = normalizeTags(template.Tags)

	if template.Versions == nil {
		template.Versions = make([]*models.Version, 0)
	}

	if err := s.persistence.TemplateRepository().Save(ctx, &template); err != nil {
		return nil, err
	}

	return &template, nil
}
