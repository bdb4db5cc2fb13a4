package submission

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/assignment"
	"github.com/campusbridge/backend/core/user"
)

var ErrNotFound = errors.New("submission not found")

type (
	Repository interface {
		GetSubmission(ctx context.Context, id string) (Submission, error)
		// GetStudentSubmission returns the single submission of a student for
		// an assignment, if any.
		GetStudentSubmission(ctx context.Context, assignmentID, studentID string) (Submission, error)
		QuerySubmissions(ctx context.Context, assignmentID string, ordering []core.DBOrdering) ([]Submission, error)
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
		DeleteSubmissionsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo    Repository
		userSvc *user.Service
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, userSvc *user.Service, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, userSvc: userSvc, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) GetByID(ctx context.Context, id string) (Submission, error) {
	return svc.repo.GetSubmission(ctx, id)
}

func (svc *Service) GetForStudent(ctx context.Context, assignmentID, studentID string) (Submission, error) {
	return svc.repo.GetStudentSubmission(ctx, assignmentID, studentID)
}

func (svc *Service) Query(ctx context.Context, assignmentID string, ordering []core.DBOrdering) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, assignmentID, ordering)
}

// Submit records the student's work for an assignment. Lateness is computed
// here, against the assignment due date, and stored with the submission.
// A second submit for the same (assignment, student) overwrites the first
// and marks the row resubmitted; a student never holds more than one row
// per assignment.
func (svc *Service) Submit(ctx context.Context, asg assignment.Assignment, studentID string, ns NewSubmission) (Submission, error) {
	now := time.Now().UTC()
	sub := Submission{
		AssignmentID: asg.ID,
		StudentID:    studentID,
		Content:      ns.Content,
		Attachments:  ns.Attachments,
		Status:       StatusSubmitted,
		IsLate:       !asg.DueDate.IsZero() && now.After(asg.DueDate),
		SubmittedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if sub.Attachments == nil {
		sub.Attachments = []Attachment{}
	}

	prev, err := svc.repo.GetStudentSubmission(ctx, asg.ID, studentID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return svc.repo.CreateSubmission(ctx, sub)
		}
		return Submission{}, err
	}

	sub.ID = prev.ID
	sub.Status = StatusResubmitted
	sub.CreatedAt = prev.CreatedAt
	return svc.repo.UpdateSubmission(ctx, sub)
}

// SetGrade grades a submission and notifies the student by email.
func (svc *Service) SetGrade(ctx context.Context, sub Submission, asg assignment.Assignment, gs GradeSubmission, graderID string) (Submission, error) {
	now := time.Now().UTC()
	sub.Grade = &Grade{
		Points:   *gs.Points,
		Feedback: gs.Feedback,
		GradedBy: graderID,
		GradedAt: now,
	}
	sub.Status = StatusGraded
	sub.UpdatedAt = now

	graded, err := svc.repo.UpdateSubmission(ctx, sub)
	if err != nil {
		return Submission{}, err
	}

	if student, err := svc.userSvc.GetByID(ctx, sub.StudentID); err == nil {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: student.FullName(), Address: student.Email}},
			Subject: fmt.Sprintf("Graded: %s", asg.Title),
			BodyStr: fmt.Sprintf(
				"Hi %s,\n\nYour submission for %q has been graded: %d/%d.",
				student.FirstName, asg.Title, graded.Grade.Points, asg.PointsPossible,
			),
		})
	}
	return graded, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSubmissionsByID(ctx, ids...)
}
