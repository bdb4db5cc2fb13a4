package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/policy"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

var AllStatuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// Entry is one student's status on a record's date.
type Entry struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,attendancestatus"`
	Note      string `json:"note,omitempty"`
}

// Record holds the attendance of a course for a single day. A course has at
// most one record per day.
type Record struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"course_id"`
	Date       time.Time `json:"date"` // midnight UTC
	Entries    []Entry   `json:"entries"`
	RecordedBy string    `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// Policy returns the snapshot the access-control evaluator reasons over.
func (r *Record) Policy() *policy.AttendanceRecord {
	return &policy.AttendanceRecord{ID: r.ID, CourseID: r.CourseID, Date: r.Date}
}

// ForStudent filters the record down to the given student's own entry.
// A student with no entry on a recorded day counts as absent.
func (r *Record) ForStudent(studentID string) StudentDay {
	for _, e := range r.Entries {
		if e.StudentID == studentID {
			return StudentDay{Date: r.Date, Status: e.Status, Note: e.Note}
		}
	}
	return StudentDay{Date: r.Date, Status: StatusAbsent}
}

// StudentDay is the self-view projection of a record: the caller's own
// status on a date, nothing about classmates.
type StudentDay struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
	Note   string    `json:"note,omitempty"`
}

// DayOf truncates a time to its day, UTC.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewRecord contains information needed to record attendance for a day.
type NewRecord struct {
	Date    time.Time `json:"date" validate:"required"`
	Entries []Entry   `json:"entries" validate:"required,min=1,dive"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.Date = DayOf(nr.Date)
	for i := range nr.Entries {
		nr.Entries[i].Note = core.CleanString(nr.Entries[i].Note)
	}
	return validate.Struct(nr)
}

// UpdateRecord replaces the entries of an existing record; the date is fixed.
type UpdateRecord struct {
	Entries []Entry `json:"entries" validate:"required,min=1,dive"`
}

func (ur *UpdateRecord) Validate(validate *validator.Validate) error {
	for i := range ur.Entries {
		ur.Entries[i].Note = core.CleanString(ur.Entries[i].Note)
	}
	return validate.Struct(ur)
}
