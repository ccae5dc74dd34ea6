package models

import (
	"slices"
	"time"
)

// Template is a named, persisted workflow with its append-only version chain.
type Template struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"        validate:"required,min=3"`
	Description string     `json:"description"`
	Tags        []string   `json:"tags"`
	Workflow    *Graph     `json:"workflow"    validate:"required"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Versions    []*Version `json:"versions"`
}

// Version is one immutable snapshot in a template's chain. Version numbers
// are 1-based and monotonic per template; a version is never mutated or
// deleted once appended.
type Version struct {
	ID         string    `json:"id"`
	Number     int       `json:"version"`
	Workflow   *Graph    `json:"workflow"`
	SavedAt    time.Time `json:"savedAt"`
	ChangeNote string    `json:"changeNote"`
}

// Clone returns a deep copy of the template, version chain included.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}

	clone := *t
	clone.Tags = slices.Clone(t.Tags)
	clone.Workflow = t.Workflow.Clone()
	clone.Versions = make([]*Version, 0, len(t.Versions))

	for _, version := range t.Versions {
		clone.Versions = append(clone.Versions, version.Clone())
	}

	return &clone
}

// VersionByID returns the version with the given id, or nil when absent.
func (t *Template) VersionByID(versionID string) *Version {
	for _, version := range t.Versions {
		if version.ID == versionID {
			return version
		}
	}

	return nil
}

// Clone returns a deep copy of the version.
func (v *Version) Clone() *Version {
	if v == nil {
		return nil
	}

	clone := *v
	clone.Workflow = v.Workflow.Clone()

	return &clone
}
