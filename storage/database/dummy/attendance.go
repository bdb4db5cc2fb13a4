package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) CreateRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.ID = uuid.New().String()
	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) GetRecord(_ context.Context, id string) (attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return *rec, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) GetRecordByDay(_ context.Context, courseID string, day time.Time) (attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rec := range repo.db.table {
		if rec.CourseID == courseID && rec.Date.Equal(day) {
			return *rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, courseID string, ordering []core.DBOrdering) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]attendance.Record, 0)
	for _, rec := range repo.db.table {
		if rec.CourseID == courseID {
			recs = append(recs, *rec)
		}
	}

	sortRecords(recs, ordering)
	return recs, nil
}

func sortRecords(recs []attendance.Record, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		sort.SliceStable(recs, func(a, b int) bool { return recs[a].Date.Before(recs[b].Date) })
		return
	}
	for i := len(ordering) - 1; i >= 0; i-- {
		ord := ordering[i]
		sort.SliceStable(recs, func(a, b int) bool {
			var less bool
			switch ord.Field {
			case "date":
				less = recs[a].Date.Before(recs[b].Date)
			case "created_at":
				less = recs[a].CreatedAt.Before(recs[b].CreatedAt)
			default:
				return false
			}
			if !ord.Ascending {
				return !less
			}
			return less
		})
	}
}

func (repo *attendanceRepository) UpdateRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[rec.ID]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	if rec.Entries != nil {
		orig.Entries = rec.Entries
	}
	if !rec.UpdatedAt.IsZero() {
		orig.UpdatedAt = rec.UpdatedAt
	}
	return *orig, nil
}

func (repo *attendanceRepository) DeleteRecordsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
