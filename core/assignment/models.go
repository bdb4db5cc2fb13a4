package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/policy"
)

// Submission types
const (
	SubmissionTypeFile     = "file"
	SubmissionTypeText     = "text"
	SubmissionTypeLink     = "link"
	SubmissionTypeMultiple = "multiple"
)

var AllSubmissionTypes = []string{SubmissionTypeFile, SubmissionTypeText, SubmissionTypeLink, SubmissionTypeMultiple}

const DefaultPointsPossible = 100

type Assignment struct {
	ID             string    `json:"id"`
	CourseID       string    `json:"course_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	DueDate        time.Time `json:"due_date"`
	PointsPossible int       `json:"points_possible"`
	SubmissionType string    `json:"submission_type"`
	IsPublished    *bool     `json:"is_published"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

func (a *Assignment) SetPublished(published bool) { a.IsPublished = &published }

func (a *Assignment) Published() bool { return a.IsPublished != nil && *a.IsPublished }

// Policy returns the snapshot the access-control evaluator reasons over.
func (a *Assignment) Policy() *policy.Assignment {
	return &policy.Assignment{
		ID:          a.ID,
		CourseID:    a.CourseID,
		IsPublished: a.Published(),
		DueDate:     a.DueDate,
	}
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title          string    `json:"title" validate:"required"`
	Description    string    `json:"description"`
	DueDate        time.Time `json:"due_date" validate:"required"`
	PointsPossible int       `json:"points_possible" validate:"omitempty,gt=0"`
	SubmissionType string    `json:"submission_type" validate:"omitempty,submissiontype"`
	IsPublished    *bool     `json:"is_published"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	if na.PointsPossible == 0 {
		na.PointsPossible = DefaultPointsPossible
	}
	if na.SubmissionType == "" {
		na.SubmissionType = SubmissionTypeFile
	}
	return validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an
// existing Assignment. Empty fields fall back to the original values.
type UpdateAssignment struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	DueDate        time.Time `json:"due_date"`
	PointsPossible int       `json:"points_possible" validate:"omitempty,gt=0"`
	SubmissionType string    `json:"submission_type" validate:"omitempty,submissiontype"`
	IsPublished    *bool     `json:"is_published"`
}

func (ua *UpdateAssignment) Validate(validate *validator.Validate, orig Assignment) error {
	if title := core.CleanString(ua.Title); title != "" {
		ua.Title = title
	} else {
		ua.Title = orig.Title
	}
	ua.Description = core.CleanString(ua.Description)
	if ua.DueDate.IsZero() {
		ua.DueDate = orig.DueDate
	}
	if ua.PointsPossible == 0 {
		ua.PointsPossible = orig.PointsPossible
	}
	if ua.SubmissionType == "" {
		ua.SubmissionType = orig.SubmissionType
	}
	return validate.Struct(ua)
}
