package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/policy"
)

var ErrNotFound = errors.New("attendance record not found")

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, id string) (Record, error)
		// GetRecordByDay returns the course's record for a day, if any.
		GetRecordByDay(ctx context.Context, courseID string, day time.Time) (Record, error)
		QueryRecords(ctx context.Context, courseID string, ordering []core.DBOrdering) ([]Record, error)
		UpdateRecord(ctx context.Context, rec Record) (Record, error)
		DeleteRecordsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, courseID string, nr NewRecord, recordedBy string) (Record, error) {
	now := time.Now().UTC()
	rec := Record{
		CourseID:   courseID,
		Date:       DayOf(nr.Date),
		Entries:    nr.Entries,
		RecordedBy: recordedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateRecord(ctx, rec)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Record, error) {
	return svc.repo.GetRecord(ctx, id)
}

// ExistsForDay reports whether the course already has a record on the given
// day.
func (svc *Service) ExistsForDay(ctx context.Context, courseID string, day time.Time) (bool, error) {
	if _, err := svc.repo.GetRecordByDay(ctx, courseID, DayOf(day)); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) Query(ctx context.Context, courseID string, ordering []core.DBOrdering) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, courseID, ordering)
}

// QueryForStudent returns the per-day self-view of a student over the
// course's records.
func (svc *Service) QueryForStudent(ctx context.Context, courseID, studentID string, ordering []core.DBOrdering) ([]StudentDay, error) {
	recs, err := svc.repo.QueryRecords(ctx, courseID, ordering)
	if err != nil {
		return nil, err
	}
	days := make([]StudentDay, 0, len(recs))
	for _, rec := range recs {
		days = append(days, rec.ForStudent(studentID))
	}
	return days, nil
}

func (svc *Service) Update(ctx context.Context, rec Record, ur UpdateRecord) (Record, error) {
	rec.Entries = ur.Entries
	rec.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRecord(ctx, rec)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteRecordsByID(ctx, ids...)
}

// EntryRefs maps the record entries to policy student references against the
// course enrollment.
func EntryRefs(crs *policy.Course, entries []Entry) []policy.StudentRef {
	refs := make([]policy.StudentRef, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, policy.StudentRef{
			ID:        e.StudentID,
			Exists:    true,
			IsStudent: true,
			Enrolled:  crs.HasStudent(e.StudentID),
		})
	}
	return refs
}
