package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/policy"
)

type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Code         string    `json:"code"`
	Description  string    `json:"description,omitempty"`
	Department   string    `json:"department,omitempty"`
	Credits      int       `json:"credits"`
	InstructorID string    `json:"instructor_id"`
	StudentIDs   []string  `json:"student_ids"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	IsActive     *bool     `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (c *Course) SetActive(active bool) { c.IsActive = &active }

func (c *Course) HasStudent(id string) bool {
	for _, sid := range c.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// Policy returns the snapshot the access-control evaluator reasons over.
func (c *Course) Policy() *policy.Course {
	active := c.IsActive != nil && *c.IsActive
	return &policy.Course{
		ID:           c.ID,
		InstructorID: c.InstructorID,
		StudentIDs:   c.StudentIDs,
		IsActive:     active,
	}
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title        string    `json:"title" validate:"required"`
	Code         string    `json:"code" validate:"required,alphanum_"`
	Description  string    `json:"description"`
	Department   string    `json:"department"`
	Credits      int       `json:"credits" validate:"omitempty,gte=0"`
	InstructorID string    `json:"instructor_id"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date" validate:"omitempty,gtefield=StartDate"`
}

func (nc *NewCourse) Validate(validate *validator.Validate, svc *Service) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Code = core.CleanString(nc.Code, true /* lower */)
	nc.Description = core.CleanString(nc.Description)
	nc.Department = core.CleanString(nc.Department)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return svc.CheckUniqueness(nc.Code)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Empty fields fall back to the original values.
type UpdateCourse struct {
	Title        string    `json:"title"`
	Code         string    `json:"code" validate:"omitempty,alphanum_"`
	Description  string    `json:"description"`
	Department   string    `json:"department"`
	Credits      *int      `json:"credits" validate:"omitempty,gte=0"`
	InstructorID string    `json:"instructor_id"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	IsActive     *bool     `json:"is_active"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate, orig Course, svc *Service) error {
	if title := core.CleanString(uc.Title); title != "" {
		uc.Title = title
	} else {
		uc.Title = orig.Title
	}
	if code := core.CleanString(uc.Code, true /* lower */); code != "" {
		uc.Code = code
	} else {
		uc.Code = orig.Code
	}
	uc.Description = core.CleanString(uc.Description)
	uc.Department = core.CleanString(uc.Department)
	if uc.InstructorID == "" {
		uc.InstructorID = orig.InstructorID
	}
	if uc.StartDate.IsZero() {
		uc.StartDate = orig.StartDate
	}
	if uc.EndDate.IsZero() {
		uc.EndDate = orig.EndDate
	}
	if uc.Credits == nil {
		uc.Credits = &orig.Credits
	}

	if err := validate.Struct(uc); err != nil {
		return err
	}
	return svc.CheckUniqueness(uc.Code, orig)
}

// EnrollStudents is the enroll request body.
type EnrollStudents struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1"`
}

func (es EnrollStudents) Validate(validate *validator.Validate) error { return validate.Struct(es) }

type QueryFilter struct {
	Search       string `query:"search"`
	Department   string `query:"department"`
	InstructorID string `query:"instructor"`
	StudentID    string `query:"-"` // set by the API layer, not callers
	IsActive     *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Department == "" && qf.InstructorID == "" &&
		qf.StudentID == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Department = core.CleanString(qf.Department)
}
