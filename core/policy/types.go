package policy

import "time"

// Roles
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// Actor is the authenticated caller a decision is made for.
// It is derived from verified session claims and immutable per request.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsFaculty() bool { return a.Role == RoleFaculty }
func (a Actor) IsStudent() bool { return a.Role == RoleStudent }

// Action is a policy-gated operation on a course-scoped resource.
type Action string

const (
	ReadCourse      Action = "course.read"
	WriteCourse     Action = "course.write"
	DeleteCourse    Action = "course.delete"
	EnrollStudents  Action = "course.enroll"
	UnenrollStudent Action = "course.unenroll"

	ReadAssignment   Action = "assignment.read"
	WriteAssignment  Action = "assignment.write"
	DeleteAssignment Action = "assignment.delete"

	ReadMaterial   Action = "material.read"
	WriteMaterial  Action = "material.write"
	DeleteMaterial Action = "material.delete"

	CreateSubmission Action = "submission.create"
	ReadSubmission   Action = "submission.read"
	GradeSubmission  Action = "submission.grade"

	ReadAttendance   Action = "attendance.read"
	WriteAttendance  Action = "attendance.write"
	DeleteAttendance Action = "attendance.delete"
)

// Resource snapshots.
//
// The evaluator never performs lookups; callers resolve the documents a
// decision depends on and hand in reduced copies of them.

type Course struct {
	ID           string
	InstructorID string
	StudentIDs   []string
	IsActive     bool
}

// HasStudent reports whether the student is enrolled.
func (c Course) HasStudent(id string) bool {
	for _, sid := range c.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}

type Assignment struct {
	ID          string
	CourseID    string
	IsPublished bool
	DueDate     time.Time
}

type Material struct {
	ID          string
	CourseID    string
	IsPublished bool
}

type Submission struct {
	ID           string
	AssignmentID string
	StudentID    string
	Status       string
}

type AttendanceRecord struct {
	ID       string
	CourseID string
	Date     time.Time
}

// Grade carries the grading input checked against the assignment's scale
// once authorization has passed.
type Grade struct {
	Points         int
	PointsPossible int
}

// StudentRef describes a student id targeted by an enrollment change or an
// attendance entry, pre-resolved by the caller.
type StudentRef struct {
	ID        string
	Exists    bool
	IsStudent bool
	Enrolled  bool
}

// Resource is the resolved context a single decision is made against.
// Course is required for every action; the narrower fields are set per action.
type Resource struct {
	Course     *Course
	Assignment *Assignment
	Material   *Material
	Submission *Submission
	Attendance *AttendanceRecord

	// StudentID is the student a CreateSubmission concerns.
	// Empty means the actor themselves.
	StudentID string

	// Grade is the grading input for GradeSubmission.
	Grade *Grade

	// Students are the resolved targets of EnrollStudents, UnenrollStudent
	// and the entries of a WriteAttendance.
	Students []StudentRef

	// AttendanceExists reports that a record already exists for the
	// (course, calendar day) a WriteAttendance would create.
	AttendanceExists bool
}
