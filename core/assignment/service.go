package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/campusbridge/backend/core"
)

var ErrNotFound = errors.New("assignment not found")

type (
	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		// QueryAssignments lists the assignments of a course; publishedOnly
		// narrows to published ones.
		QueryAssignments(ctx context.Context, courseID string, publishedOnly bool, ordering []core.DBOrdering) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment, isPublished *bool) (Assignment, error)
		// DeleteAssignmentsByID also removes the submissions of the deleted
		// assignments.
		DeleteAssignmentsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, courseID string, na NewAssignment) (Assignment, error) {
	now := time.Now().UTC()
	asg := Assignment{
		CourseID:       courseID,
		Title:          na.Title,
		Description:    na.Description,
		DueDate:        na.DueDate,
		PointsPossible: na.PointsPossible,
		SubmissionType: na.SubmissionType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	asg.SetPublished(na.IsPublished != nil && *na.IsPublished)
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

func (svc *Service) Query(ctx context.Context, courseID string, publishedOnly bool, ordering []core.DBOrdering) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, courseID, publishedOnly, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error) {
	asg := Assignment{
		ID:             id,
		Title:          ua.Title,
		Description:    ua.Description,
		DueDate:        ua.DueDate,
		PointsPossible: ua.PointsPossible,
		SubmissionType: ua.SubmissionType,
		UpdatedAt:      time.Now().UTC(),
	}
	return svc.repo.UpdateAssignment(ctx, asg, ua.IsPublished)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteAssignmentsByID(ctx, ids...)
}
