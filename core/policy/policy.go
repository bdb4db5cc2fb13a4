// Package policy centralizes every access-control decision of the API.
//
// The route handlers used to be the natural place for these checks, but
// repeating role/ownership conditionals per route invites drift between
// endpoints. Instead each handler resolves the documents a request touches,
// reduces them to snapshots and asks Evaluate for a verdict; the HTTP layer
// translates the verdict into a status code.
//
// Evaluate is a pure function: no I/O, no shared state, total over its input
// domain. It is safe to call from any number of request goroutines.
package policy

// Evaluate decides whether actor may perform action on the resolved resource
// context. Missing required resources yield NotFound before any
// authorization question is asked; domain invariants (grade range, duplicate
// attendance date, enrollment target validity) are checked last, only once
// authorization has passed.
func Evaluate(actor Actor, action Action, res Resource) Decision {
	if kind, missing := missingResource(action, res); missing {
		return notFound(kind)
	}

	d := authorize(actor, action, res)
	if !d.Allowed {
		return d
	}

	if reason, violated := violatedInvariant(action, res); violated {
		return deny(reason)
	}
	return d
}

// missingResource checks that the resources an action requires were resolved.
func missingResource(action Action, res Resource) (ResourceKind, bool) {
	if res.Course == nil {
		return KindCourse, true
	}

	switch action {
	case ReadAssignment, WriteAssignment, DeleteAssignment, CreateSubmission:
		if res.Assignment == nil {
			return KindAssignment, true
		}
	case ReadMaterial, WriteMaterial, DeleteMaterial:
		if res.Material == nil {
			return KindMaterial, true
		}
	case ReadSubmission, GradeSubmission:
		if res.Assignment == nil {
			return KindAssignment, true
		}
		if res.Submission == nil {
			return KindSubmission, true
		}
	case DeleteAttendance:
		if res.Attendance == nil {
			return KindAttendance, true
		}
	}
	return "", false
}

// authorize applies the role/ownership/membership rules in precedence order;
// the first matching rule wins.
func authorize(actor Actor, action Action, res Resource) Decision {
	// Admins may do everything. Course deletion is reserved to them:
	// not even the instructor may delete a course.
	if actor.IsAdmin() {
		return allow()
	}
	if action == DeleteCourse {
		return deny(NotAuthorized)
	}

	course := *res.Course

	// Ownership: the course instructor manages the course and everything
	// under it, published or not. Submitting is not part of that: only
	// students create submissions.
	if actor.ID == course.InstructorID {
		if action != CreateSubmission {
			return allow()
		}
	}

	// Membership: enrolled students get read access to the published
	// surface of the course, plus their own submissions and attendance.
	if actor.IsStudent() && course.HasStudent(actor.ID) {
		switch action {
		case ReadCourse:
			return allow()
		case ReadAssignment:
			if res.Assignment.IsPublished {
				return allow()
			}
		case ReadMaterial:
			if res.Material.IsPublished {
				return allow()
			}
		case CreateSubmission:
			if res.Assignment.IsPublished && (res.StudentID == "" || res.StudentID == actor.ID) {
				return allow()
			}
		case ReadSubmission:
			if res.Submission.StudentID == actor.ID {
				return allow()
			}
		case ReadAttendance:
			// Not a full deny: the student still sees a view of the
			// record narrowed to their own entries.
			return allowOwnEntries()
		}
	}

	return deny(NotAuthorized)
}

// violatedInvariant checks the domain invariants that share the policy gate:
// they block the mutation exactly like a denial, but only apply once the
// actor is authorized.
func violatedInvariant(action Action, res Resource) (Reason, bool) {
	switch action {
	case GradeSubmission:
		if g := res.Grade; g != nil && (g.Points < 0 || g.Points > g.PointsPossible) {
			return InvalidGradeRange, true
		}

	case WriteAttendance:
		// Creating a second record for the same (course, day) is rejected
		// regardless of who asks.
		if res.Attendance == nil && res.AttendanceExists {
			return DuplicateDate, true
		}
		for _, ref := range res.Students {
			if !ref.Exists || !ref.Enrolled {
				return InvalidStudentReference, true
			}
		}

	case EnrollStudents, UnenrollStudent:
		for _, ref := range res.Students {
			if !ref.Exists || !ref.IsStudent {
				return InvalidStudentReference, true
			}
		}
	}
	return "", false
}
