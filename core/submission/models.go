package submission

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/policy"
)

// Statuses
const (
	StatusSubmitted   = "submitted"
	StatusResubmitted = "resubmitted"
	StatusGraded      = "graded"
)

// Attachment is a name + url record; file storage itself is out of scope.
type Attachment struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
}

type Grade struct {
	Points   int       `json:"points"`
	Feedback string    `json:"feedback,omitempty"`
	GradedBy string    `json:"graded_by"`
	GradedAt time.Time `json:"graded_at"` // UTC
}

type Submission struct {
	ID           string       `json:"id"`
	AssignmentID string       `json:"assignment_id"`
	StudentID    string       `json:"student_id"`
	Content      string       `json:"content,omitempty"`
	Attachments  []Attachment `json:"attachments"`
	Status       string       `json:"status"`
	IsLate       bool         `json:"is_late"`
	SubmittedAt  time.Time    `json:"submitted_at"` // UTC
	Grade        *Grade       `json:"grade,omitempty"`
	CreatedAt    time.Time    `json:"created_at"` // UTC
	UpdatedAt    time.Time    `json:"updated_at"` // UTC
}

// Policy returns the snapshot the access-control evaluator reasons over.
func (s *Submission) Policy() *policy.Submission {
	return &policy.Submission{
		ID:           s.ID,
		AssignmentID: s.AssignmentID,
		StudentID:    s.StudentID,
		Status:       s.Status,
	}
}

// NewSubmission contains information needed to submit work for an assignment.
type NewSubmission struct {
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments" validate:"omitempty,dive"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.Content = core.CleanString(ns.Content)
	return validate.Struct(ns)
}

// GradeSubmission contains the grading input for a submission.
type GradeSubmission struct {
	Points   *int   `json:"points" validate:"required"`
	Feedback string `json:"feedback"`
}

func (gs *GradeSubmission) Validate(validate *validator.Validate) error {
	gs.Feedback = core.CleanString(gs.Feedback)
	return validate.Struct(gs)
}
