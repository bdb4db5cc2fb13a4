package policy

// Reason qualifies a deny verdict.
type Reason string

const (
	NotAuthorized           Reason = "NotAuthorized"
	InvalidGradeRange       Reason = "InvalidGradeRange"
	DuplicateDate           Reason = "DuplicateDate"
	InvalidStudentReference Reason = "InvalidStudentReference"
)

// ResourceKind names the resource a NotFound verdict refers to.
type ResourceKind string

const (
	KindCourse     ResourceKind = "course"
	KindAssignment ResourceKind = "assignment"
	KindMaterial   ResourceKind = "material"
	KindSubmission ResourceKind = "submission"
	KindAttendance ResourceKind = "attendance"
)

// Decision is the verdict of a policy evaluation: Allow (optionally narrowed
// to the actor's own attendance entries), Deny with a reason, or NotFound
// when a required resource is missing from the context.
type Decision struct {
	Allowed        bool
	OwnEntriesOnly bool         // attendance self-view: allow, filtered to the actor's rows
	Reason         Reason       // set when denied
	Missing        ResourceKind // set when a required resource was not resolved
}

func allow() Decision                  { return Decision{Allowed: true} }
func allowOwnEntries() Decision        { return Decision{Allowed: true, OwnEntriesOnly: true} }
func deny(r Reason) Decision           { return Decision{Reason: r} }
func notFound(k ResourceKind) Decision { return Decision{Missing: k} }

// Denied reports a deny verdict (as opposed to allow or not-found).
func (d Decision) Denied() bool { return !d.Allowed && d.Missing == "" }

// IsNotFound reports that a required resource was missing.
func (d Decision) IsNotFound() bool { return d.Missing != "" }
