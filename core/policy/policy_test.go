package policy

import (
	"testing"
	"time"
)

var (
	instructor = Actor{ID: "F1", Role: RoleFaculty}
	otherProf  = Actor{ID: "F2", Role: RoleFaculty}
	admin      = Actor{ID: "A1", Role: RoleAdmin}
	student    = Actor{ID: "S1", Role: RoleStudent}
	classmate  = Actor{ID: "S2", Role: RoleStudent}
	outsider   = Actor{ID: "S3", Role: RoleStudent}

	course = Course{ID: "C1", InstructorID: "F1", StudentIDs: []string{"S1", "S2"}, IsActive: true}
)

func res(mods ...func(*Resource)) Resource {
	c := course
	r := Resource{Course: &c}
	for _, mod := range mods {
		mod(&r)
	}
	return r
}

func withAssignment(published bool) func(*Resource) {
	return func(r *Resource) {
		r.Assignment = &Assignment{
			ID:          "AS1",
			CourseID:    "C1",
			IsPublished: published,
			DueDate:     time.Date(2024, time.September, 15, 23, 59, 59, 0, time.UTC),
		}
	}
}

func withMaterial(published bool) func(*Resource) {
	return func(r *Resource) {
		r.Material = &Material{ID: "M1", CourseID: "C1", IsPublished: published}
	}
}

func withSubmission(studentID string) func(*Resource) {
	return func(r *Resource) {
		r.Submission = &Submission{ID: "SUB1", AssignmentID: "AS1", StudentID: studentID, Status: "submitted"}
	}
}

func withGrade(points, possible int) func(*Resource) {
	return func(r *Resource) {
		r.Grade = &Grade{Points: points, PointsPossible: possible}
	}
}

type policyTest struct {
	name   string
	actor  Actor
	action Action
	res    Resource
	want   Decision
}

func checkDecisions(t *testing.T, tests []policyTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.actor, tt.action, tt.res); got != tt.want {
				t.Errorf("Evaluate() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_courseAccess(t *testing.T) {
	checkDecisions(t, []policyTest{
		{name: "admin reads any course", actor: admin, action: ReadCourse, res: res(), want: allow()},
		{name: "instructor reads own course", actor: instructor, action: ReadCourse, res: res(), want: allow()},
		{name: "enrolled student reads course", actor: student, action: ReadCourse, res: res(), want: allow()},
		{name: "unenrolled student denied", actor: outsider, action: ReadCourse, res: res(), want: deny(NotAuthorized)},
		{name: "foreign faculty denied", actor: otherProf, action: ReadCourse, res: res(), want: deny(NotAuthorized)},

		{name: "instructor updates own course", actor: instructor, action: WriteCourse, res: res(), want: allow()},
		{name: "admin updates any course", actor: admin, action: WriteCourse, res: res(), want: allow()},
		{name: "foreign faculty cannot update", actor: otherProf, action: WriteCourse, res: res(), want: deny(NotAuthorized)},
		{name: "student cannot update", actor: student, action: WriteCourse, res: res(), want: deny(NotAuthorized)},
	})
}

// Course deletion is reserved to admins; the instructor owning the course is
// denied like everyone else.
func TestEvaluate_deleteCourseIsAdminOnly(t *testing.T) {
	checkDecisions(t, []policyTest{
		{name: "admin", actor: admin, action: DeleteCourse, res: res(), want: allow()},
		{name: "instructor", actor: instructor, action: DeleteCourse, res: res(), want: deny(NotAuthorized)},
		{name: "foreign faculty", actor: otherProf, action: DeleteCourse, res: res(), want: deny(NotAuthorized)},
		{name: "enrolled student", actor: student, action: DeleteCourse, res: res(), want: deny(NotAuthorized)},
	})
}

// Publishing an assignment only ever widens student access.
func TestEvaluate_publishGating(t *testing.T) {
	checkDecisions(t, []policyTest{
		{name: "student denied unpublished assignment", actor: student, action: ReadAssignment, res: res(withAssignment(false)), want: deny(NotAuthorized)},
		{name: "student allowed published assignment", actor: student, action: ReadAssignment, res: res(withAssignment(true)), want: allow()},
		{name: "instructor reads unpublished assignment", actor: instructor, action: ReadAssignment, res: res(withAssignment(false)), want: allow()},
		{name: "admin reads unpublished assignment", actor: admin, action: ReadAssignment, res: res(withAssignment(false)), want: allow()},

		{name: "student denied unpublished material", actor: student, action: ReadMaterial, res: res(withMaterial(false)), want: deny(NotAuthorized)},
		{name: "student allowed published material", actor: student, action: ReadMaterial, res: res(withMaterial(true)), want: allow()},
		{name: "instructor reads unpublished material", actor: instructor, action: ReadMaterial, res: res(withMaterial(false)), want: allow()},

		{name: "student cannot write material", actor: student, action: WriteMaterial, res: res(withMaterial(true)), want: deny(NotAuthorized)},
		{name: "foreign faculty cannot delete assignment", actor: otherProf, action: DeleteAssignment, res: res(withAssignment(true)), want: deny(NotAuthorized)},
		{name: "instructor deletes assignment", actor: instructor, action: DeleteAssignment, res: res(withAssignment(false)), want: allow()},
	})
}

func TestEvaluate_createSubmission(t *testing.T) {
	checkDecisions(t, []policyTest{
		{name: "enrolled student submits published", actor: student, action: CreateSubmission, res: res(withAssignment(true)), want: allow()},
		{name: "unenrolled student denied", actor: outsider, action: CreateSubmission, res: res(withAssignment(true)), want: deny(NotAuthorized)},
		{name: "unpublished assignment denied", actor: student, action: CreateSubmission, res: res(withAssignment(false)), want: deny(NotAuthorized)},
		{name: "instructor cannot submit", actor: instructor, action: CreateSubmission, res: res(withAssignment(true)), want: deny(NotAuthorized)},
		{name: "foreign faculty cannot submit", actor: otherProf, action: CreateSubmission, res: res(withAssignment(true)), want: deny(NotAuthorized)},
		{
			name: "student cannot submit for a classmate", actor: student, action: CreateSubmission,
			res:  res(withAssignment(true), func(r *Resource) { r.StudentID = "S2" }),
			want: deny(NotAuthorized),
		},
	})
}

func TestEvaluate_readSubmission(t *testing.T) {
	checkDecisions(t, []policyTest{
		{name: "student reads own submission", actor: student, action: ReadSubmission, res: res(withAssignment(true), withSubmission("S1")), want: allow()},
		{name: "student denied classmate submission", actor: student, action: ReadSubmission, res: res(withAssignment(true), withSubmission("S2")), want: deny(NotAuthorized)},
		{name: "instructor reads any submission", actor: instructor, action: ReadSubmission, res: res(withAssignment(false), withSubmission("S2")), want: allow()},
		{name: "admin reads any submission", actor: admin, action: ReadSubmission, res: res(withAssignment(true), withSubmission("S2")), want: allow()},
		{name: "foreign faculty denied", actor: otherProf, action: ReadSubmission, res: res(withAssignment(true), withSubmission("S2")), want: deny(NotAuthorized)},
	})
}

func TestEvaluate_gradeSubmission(t *testing.T) {
	graded := func(points int) Resource {
		return res(withAssignment(true), withSubmission("S1"), withGrade(points, 100))
	}
	checkDecisions(t, []policyTest{
		{name: "instructor grades", actor: instructor, action: GradeSubmission, res: graded(85), want: allow()},
		{name: "admin grades", actor: admin, action: GradeSubmission, res: graded(85), want: allow()},
		{name: "foreign faculty denied despite role", actor: otherProf, action: GradeSubmission, res: graded(85), want: deny(NotAuthorized)},
		{name: "student cannot grade own submission", actor: student, action: GradeSubmission, res: graded(100), want: deny(NotAuthorized)},

		// bounds are inclusive on both ends
		{name: "zero points", actor: instructor, action: GradeSubmission, res: graded(0), want: allow()},
		{name: "full points", actor: instructor, action: GradeSubmission, res: graded(100), want: allow()},
		{name: "negative points", actor: instructor, action: GradeSubmission, res: graded(-1), want: deny(InvalidGradeRange)},
		{name: "points over scale", actor: instructor, action: GradeSubmission, res: graded(101), want: deny(InvalidGradeRange)},
		// range is validated only after authorization
		{name: "unauthorized beats bad range", actor: otherProf, action: GradeSubmission, res: graded(-1), want: deny(NotAuthorized)},
	})
}

func TestEvaluate_attendance(t *testing.T) {
	existing := func(r *Resource) {
		r.Attendance = &AttendanceRecord{ID: "AT1", CourseID: "C1", Date: time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC)}
	}
	duplicate := func(r *Resource) { r.AttendanceExists = true }
	entries := func(refs ...StudentRef) func(*Resource) {
		return func(r *Resource) { r.Students = refs }
	}

	checkDecisions(t, []policyTest{
		{name: "instructor records attendance", actor: instructor, action: WriteAttendance, res: res(entries(StudentRef{ID: "S1", Exists: true, IsStudent: true, Enrolled: true})), want: allow()},
		{name: "foreign faculty denied", actor: otherProf, action: WriteAttendance, res: res(), want: deny(NotAuthorized)},
		{name: "student cannot record", actor: student, action: WriteAttendance, res: res(), want: deny(NotAuthorized)},

		// one record per (course, day), whoever asks
		{name: "duplicate day denied for instructor", actor: instructor, action: WriteAttendance, res: res(duplicate), want: deny(DuplicateDate)},
		{name: "duplicate day denied for admin", actor: admin, action: WriteAttendance, res: res(duplicate), want: deny(DuplicateDate)},
		{name: "updating existing record is not a duplicate", actor: instructor, action: WriteAttendance, res: res(existing, duplicate), want: allow()},

		{name: "entry for unenrolled student", actor: instructor, action: WriteAttendance, res: res(entries(StudentRef{ID: "S3", Exists: true, IsStudent: true, Enrolled: false})), want: deny(InvalidStudentReference)},

		{name: "instructor reads full record", actor: instructor, action: ReadAttendance, res: res(existing), want: allow()},
		{name: "admin reads full record", actor: admin, action: ReadAttendance, res: res(existing), want: allow()},
		{name: "enrolled student gets own rows only", actor: student, action: ReadAttendance, res: res(existing), want: allowOwnEntries()},
		{name: "unenrolled student denied", actor: outsider, action: ReadAttendance, res: res(existing), want: deny(NotAuthorized)},

		{name: "instructor deletes record", actor: instructor, action: DeleteAttendance, res: res(existing), want: allow()},
		{name: "student cannot delete record", actor: classmate, action: DeleteAttendance, res: res(existing), want: deny(NotAuthorized)},
	})
}

func TestEvaluate_enrollment(t *testing.T) {
	valid := StudentRef{ID: "S9", Exists: true, IsStudent: true}
	missing := StudentRef{ID: "ghost", Exists: false}
	notAStudent := StudentRef{ID: "F2", Exists: true, IsStudent: false}
	targets := func(refs ...StudentRef) func(*Resource) {
		return func(r *Resource) { r.Students = refs }
	}

	checkDecisions(t, []policyTest{
		{name: "instructor enrolls students", actor: instructor, action: EnrollStudents, res: res(targets(valid)), want: allow()},
		{name: "admin enrolls students", actor: admin, action: EnrollStudents, res: res(targets(valid)), want: allow()},
		{name: "foreign faculty denied", actor: otherProf, action: EnrollStudents, res: res(targets(valid)), want: deny(NotAuthorized)},
		{name: "student cannot enroll others", actor: student, action: EnrollStudents, res: res(targets(valid)), want: deny(NotAuthorized)},

		{name: "unknown target id", actor: instructor, action: EnrollStudents, res: res(targets(valid, missing)), want: deny(InvalidStudentReference)},
		{name: "target is not a student", actor: instructor, action: EnrollStudents, res: res(targets(notAStudent)), want: deny(InvalidStudentReference)},
		// ownership is checked before target validity
		{name: "unauthorized beats bad target", actor: otherProf, action: EnrollStudents, res: res(targets(missing)), want: deny(NotAuthorized)},

		{name: "instructor unenrolls a student", actor: instructor, action: UnenrollStudent, res: res(targets(StudentRef{ID: "S1", Exists: true, IsStudent: true})), want: allow()},
		{name: "unenroll unknown target", actor: instructor, action: UnenrollStudent, res: res(targets(missing)), want: deny(InvalidStudentReference)},
	})
}

// Missing resources surface as NotFound before any authorization answer,
// no matter who asks.
func TestEvaluate_notFoundPrecedesAuthorization(t *testing.T) {
	checkDecisions(t, []policyTest{
		{name: "no course", actor: admin, action: ReadCourse, res: Resource{}, want: notFound(KindCourse)},
		{name: "no course for outsider", actor: outsider, action: WriteCourse, res: Resource{}, want: notFound(KindCourse)},
		{name: "no assignment", actor: instructor, action: ReadAssignment, res: res(), want: notFound(KindAssignment)},
		{name: "no material", actor: student, action: ReadMaterial, res: res(), want: notFound(KindMaterial)},
		{name: "no submission", actor: instructor, action: GradeSubmission, res: res(withAssignment(true)), want: notFound(KindSubmission)},
		{name: "no attendance record to delete", actor: instructor, action: DeleteAttendance, res: res(), want: notFound(KindAttendance)},
	})
}
