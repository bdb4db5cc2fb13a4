package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/policy"
	"github.com/campusbridge/backend/core/user"
)

var (
	// errors
	ErrNotFound   = errors.New("course not found")
	ErrCodeExists = errors.New("a course with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...Course) error
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		// QueryCourses applies AND semantics on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Title or Code.
		// QueryFilter.StudentID narrows to courses the student is enrolled in.
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course, isActive *bool) (Course, error)
		// SetStudents replaces the enrollment list of the course.
		SetStudents(ctx context.Context, id string, studentIDs []string) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo    Repository
		userSvc *user.Service
	}
)

func NewService(repo Repository, userSvc *user.Service) *Service {
	return &Service{repo: repo, userSvc: userSvc}
}

func (svc *Service) CheckUniqueness(code string, exclCourses ...Course) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code, exclCourses...); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Title:        nc.Title,
		Code:         nc.Code,
		Description:  nc.Description,
		Department:   nc.Department,
		Credits:      nc.Credits,
		InstructorID: nc.InstructorID,
		StudentIDs:   []string{},
		StartDate:    nc.StartDate,
		EndDate:      nc.EndDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	crs.SetActive(true)
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter, ordering)
}

// QueryForActor scopes the listing to what the actor may see:
// students get their enrolled courses, faculty the courses they teach,
// admins everything the filter matches.
func (svc *Service) QueryForActor(ctx context.Context, actor policy.Actor, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	switch {
	case actor.IsStudent():
		filter.StudentID = actor.ID
	case actor.IsFaculty():
		filter.InstructorID = actor.ID
	}
	return svc.repo.QueryCourses(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs := Course{
		ID:           id,
		Title:        uc.Title,
		Code:         uc.Code,
		Description:  uc.Description,
		Department:   uc.Department,
		InstructorID: uc.InstructorID,
		StartDate:    uc.StartDate,
		EndDate:      uc.EndDate,
		UpdatedAt:    time.Now().UTC(),
	}
	if uc.Credits != nil {
		crs.Credits = *uc.Credits
	}
	return svc.repo.UpdateCourse(ctx, crs, uc.IsActive)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}

// ResolveStudentRefs loads the enrollment targets and reports, per id,
// whether the user exists and holds the student role. The evaluator decides
// what to do with invalid references.
func (svc *Service) ResolveStudentRefs(ctx context.Context, crs Course, ids []string) ([]policy.StudentRef, error) {
	users, err := svc.userSvc.GetManyByID(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "resolving student refs")
	}
	byID := make(map[string]user.User, len(users))
	for _, usr := range users {
		byID[usr.ID] = usr
	}

	refs := make([]policy.StudentRef, 0, len(ids))
	for _, id := range ids {
		ref := policy.StudentRef{ID: id}
		if usr, ok := byID[id]; ok {
			ref.Exists = true
			ref.IsStudent = usr.IsStudent()
			ref.Enrolled = crs.HasStudent(id)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Enroll adds the given students to the course enrollment. Already enrolled
// students are kept once.
func (svc *Service) Enroll(ctx context.Context, crs Course, studentIDs []string) (Course, error) {
	seen := make(map[string]bool, len(crs.StudentIDs)+len(studentIDs))
	merged := make([]string, 0, len(crs.StudentIDs)+len(studentIDs))
	for _, id := range crs.StudentIDs {
		seen[id] = true
		merged = append(merged, id)
	}
	for _, id := range studentIDs {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	return svc.repo.SetStudents(ctx, crs.ID, merged)
}

// Unenroll removes a single student from the course enrollment.
func (svc *Service) Unenroll(ctx context.Context, crs Course, studentID string) (Course, error) {
	kept := make([]string, 0, len(crs.StudentIDs))
	for _, id := range crs.StudentIDs {
		if id != studentID {
			kept = append(kept, id)
		}
	}
	return svc.repo.SetStudents(ctx, crs.ID, kept)
}
