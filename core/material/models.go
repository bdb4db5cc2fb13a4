package material

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/policy"
)

// Material types
const (
	TypeDocument = "document"
	TypeVideo    = "video"
	TypeLink     = "link"
	TypeOther    = "other"
)

var AllTypes = []string{TypeDocument, TypeVideo, TypeLink, TypeOther}

type Material struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	URL         string    `json:"url,omitempty"`
	IsPublished *bool     `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (m *Material) SetPublished(published bool) { m.IsPublished = &published }

func (m *Material) Published() bool { return m.IsPublished != nil && *m.IsPublished }

// Policy returns the snapshot the access-control evaluator reasons over.
func (m *Material) Policy() *policy.Material {
	return &policy.Material{ID: m.ID, CourseID: m.CourseID, IsPublished: m.Published()}
}

// NewMaterial contains information needed to create a new Material.
type NewMaterial struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"omitempty,materialtype"`
	URL         string `json:"url" validate:"omitempty,url"`
	IsPublished *bool  `json:"is_published"`
}

func (nm *NewMaterial) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	if nm.Type == "" {
		nm.Type = TypeDocument
	}
	return validate.Struct(nm)
}

// UpdateMaterial defines what information may be provided to modify an
// existing Material. Empty fields fall back to the original values.
type UpdateMaterial struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type" validate:"omitempty,materialtype"`
	URL         string `json:"url" validate:"omitempty,url"`
	IsPublished *bool  `json:"is_published"`
}

func (um *UpdateMaterial) Validate(validate *validator.Validate, orig Material) error {
	if title := core.CleanString(um.Title); title != "" {
		um.Title = title
	} else {
		um.Title = orig.Title
	}
	um.Description = core.CleanString(um.Description)
	if um.Type == "" {
		um.Type = orig.Type
	}
	if um.URL == "" {
		um.URL = orig.URL
	}
	return validate.Struct(um)
}
