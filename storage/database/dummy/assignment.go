package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/assignment"
)

type assignmentRepository struct {
	db   *assignmentTable
	subs *submissionTable
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db.assignment, subs: db.submission}
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	asg.ID = uuid.New().String()
	repo.db.table[asg.ID] = &asg
	return asg, nil
}

func (repo *assignmentRepository) GetAssignment(_ context.Context, id string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if asg, ok := repo.db.table[id]; ok {
		return *asg, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignments(_ context.Context, courseID string, publishedOnly bool, ordering []core.DBOrdering) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	asgs := make([]assignment.Assignment, 0)
	for _, asg := range repo.db.table {
		if asg.CourseID != courseID {
			continue
		}
		if publishedOnly && !asg.Published() {
			continue
		}
		asgs = append(asgs, *asg)
	}

	sortAssignments(asgs, ordering)
	return asgs, nil
}

func sortAssignments(asgs []assignment.Assignment, ordering []core.DBOrdering) {
	for i := len(ordering) - 1; i >= 0; i-- {
		ord := ordering[i]
		sort.SliceStable(asgs, func(a, b int) bool {
			var less bool
			switch ord.Field {
			case "title":
				less = asgs[a].Title < asgs[b].Title
			case "due_date":
				less = asgs[a].DueDate.Before(asgs[b].DueDate)
			case "created_at":
				less = asgs[a].CreatedAt.Before(asgs[b].CreatedAt)
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

func (repo *assignmentRepository) UpdateAssignment(_ context.Context, asg assignment.Assignment, isPublished *bool) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[asg.ID]
	if !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	if asg.Title != "" {
		orig.Title = asg.Title
	}
	orig.Description = asg.Description
	if !asg.DueDate.IsZero() {
		orig.DueDate = asg.DueDate
	}
	if asg.PointsPossible > 0 {
		orig.PointsPossible = asg.PointsPossible
	}
	if asg.SubmissionType != "" {
		orig.SubmissionType = asg.SubmissionType
	}
	if isPublished != nil {
		orig.IsPublished = isPublished
	}
	if !asg.UpdatedAt.IsZero() {
		orig.UpdatedAt = asg.UpdatedAt
	}
	return *orig, nil
}

func (repo *assignmentRepository) DeleteAssignmentsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	deleted := make(map[string]bool, len(ids))
	for _, id := range ids {
		delete(repo.db.table, id)
		deleted[id] = true
	}

	// cascade to submissions
	repo.subs.Lock()
	defer repo.subs.Unlock()
	for id, sub := range repo.subs.table {
		if deleted[sub.AssignmentID] {
			delete(repo.subs.table, id)
		}
	}
	return nil
}
