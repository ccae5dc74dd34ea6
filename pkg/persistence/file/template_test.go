package file

import (
	"os"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/pkg/models"
)

func testTemplate(id, name string) *models.Template {
	now := time.Now().UTC()

	return &models.Template{
		ID:   id,
		Name: name,
		Tags: []string{"reporting"},
		Workflow: &models.Graph{Steps: []*models.Step{
			{
				ID:        1,
				AgentType: "collector",
				Timing:    models.NewAutoTiming(),
				Input:     models.NewPromptInput("collect the data"),
			},
		}},
		CreatedAt: now,
		UpdatedAt: now,
		Versions:  make([]*models.Version, 0),
	}
}

func TestTemplateRepository_SaveAndGetByID(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.TemplateRepository()

	template := testTemplate("tpl-1", "Daily digest")
	require.NoError(t, repo.Save(t.Context(), template))

	loaded, err := repo.GetByID(t.Context(), "tpl-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, template.Name, loaded.Name)
	require.Len(t, loaded.Workflow.Steps, 1)
	assert.Equal(t, models.TimingAuto, loaded.Workflow.Steps[0].Timing.Kind)
	assert.Equal(t, models.InputPrompt, loaded.Workflow.Steps[0].Input.Kind)
}

func TestTemplateRepository_GetByID_Missing(t *testing.T) {
	p := NewPersistence(t.TempDir())

	loaded, err := p.TemplateRepository().GetByID(t.Context(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestTemplateRepository_List(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.TemplateRepository()

	// Listing before anything was saved must not fail.
	templates, err := repo.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, templates)

	older := testTemplate("tpl-1", "older")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	require.NoError(t, repo.Save(t.Context(), older))
	require.NoError(t, repo.Save(t.Context(), testTemplate("tpl-2", "newer")))

	templates, err = repo.List(t.Context())
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "older", templates[0].Name)
	assert.Equal(t, "newer", templates[1].Name)
}

func TestTemplateRepository_GetByName(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.TemplateRepository()

	require.NoError(t, repo.Save(t.Context(), testTemplate("tpl-1", "Daily digest")))

	loaded, err := repo.GetByName(t.Context(), "Daily digest")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "tpl-1", loaded.ID)

	missing, err := repo.GetByName(t.Context(), "no such name")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTemplateRepository_Delete(t *testing.T) {
	root := t.TempDir()
	p := NewPersistence(root)
	repo := p.TemplateRepository()

	require.NoError(t, repo.Save(t.Context(), testTemplate("tpl-1", "Daily digest")))
	require.NoError(t, repo.Delete(t.Context(), "tpl-1"))

	_, err := os.Stat(path.Join(root, "templates", "tpl-1.json"))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	assert.NoError(t, repo.Delete(t.Context(), "tpl-1"))
}

func TestTemplateRepository_SaveOverwrites(t *testing.T) {
	p := NewPersistence(t.TempDir())
	repo := p.TemplateRepository()

	template := testTemplate("tpl-1", "Daily digest")
	require.NoError(t, repo.Save(t.Context(), template))

	template.Description = "updated"
	template.Versions = append(template.Versions, &models.Version{
		ID:       "v-1",
		Number:   1,
		Workflow: template.Workflow.Clone(),
		SavedAt:  template.UpdatedAt,
	})
	require.NoError(t, repo.Save(t.Context(), template))

	loaded, err := repo.GetByID(t.Context(), "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, "updated", loaded.Description)
	require.Len(t, loaded.Versions, 1)
	assert.Equal(t, 1, loaded.Versions[0].Number)
}

func TestPersistence_HealthCheck(t *testing.T) {
	p := NewPersistence(t.TempDir())
	assert.NoError(t, p.HealthCheck(t.Context()))

	missing := NewPersistence("/nonexistent/flowdeck-test-root")
	assert.Error(t, missing.HealthCheck(t.Context()))
}
