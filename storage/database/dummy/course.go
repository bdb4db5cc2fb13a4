package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) query() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		courses = append(courses, *c)
	}
	return courses
}

func (repo *courseRepository) CheckCodeUniqueness(_ context.Context, code string, excludedCourses ...course.Course) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedCourses))
	for _, crs := range excludedCourses {
		excluded[crs.ID] = true
	}

	for _, crs := range repo.query() {
		if crs.Code == code && !excluded[crs.ID] {
			return course.ErrCodeExists
		}
	}
	return nil
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter *course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := repo.query()

	if filter != nil {
		if filter.Search != "" {
			search := strings.ToLower(filter.Search)
			var filtered []course.Course
			for _, c := range courses {
				if strings.Contains(strings.ToLower(c.Title), search) ||
					strings.Contains(strings.ToLower(c.Code), search) {
					filtered = append(filtered, c)
				}
			}
			courses = filtered
		}
		if courses != nil && filter.Department != "" {
			var filtered []course.Course
			for _, c := range courses {
				if strings.EqualFold(c.Department, filter.Department) {
					filtered = append(filtered, c)
				}
			}
			courses = filtered
		}
		if courses != nil && filter.InstructorID != "" {
			var filtered []course.Course
			for _, c := range courses {
				if c.InstructorID == filter.InstructorID {
					filtered = append(filtered, c)
				}
			}
			courses = filtered
		}
		if courses != nil && filter.StudentID != "" {
			var filtered []course.Course
			for _, c := range courses {
				if c.HasStudent(filter.StudentID) {
					filtered = append(filtered, c)
				}
			}
			courses = filtered
		}
		if courses != nil && filter.IsActive != nil {
			var filtered []course.Course
			for _, c := range courses {
				if c.IsActive != nil && *c.IsActive == *filter.IsActive {
					filtered = append(filtered, c)
				}
			}
			courses = filtered
		}
	}

	sortCourses(courses, ordering)
	return courses, nil
}

func sortCourses(courses []course.Course, ordering []core.DBOrdering) {
	for i := len(ordering) - 1; i >= 0; i-- {
		ord := ordering[i]
		sort.SliceStable(courses, func(a, b int) bool {
			var less bool
			switch ord.Field {
			case "title":
				less = courses[a].Title < courses[b].Title
			case "code":
				less = courses[a].Code < courses[b].Code
			case "created_at":
				less = courses[a].CreatedAt.Before(courses[b].CreatedAt)
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

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course, isActive *bool) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if crs.Title != "" {
		orig.Title = crs.Title
	}
	if crs.Code != "" {
		orig.Code = crs.Code
	}
	orig.Description = crs.Description
	orig.Department = crs.Department
	if crs.Credits >= 0 {
		orig.Credits = crs.Credits
	}
	if crs.InstructorID != "" {
		orig.InstructorID = crs.InstructorID
	}
	if !crs.StartDate.IsZero() {
		orig.StartDate = crs.StartDate
	}
	if !crs.EndDate.IsZero() {
		orig.EndDate = crs.EndDate
	}
	if isActive != nil {
		orig.IsActive = isActive
	}
	if !crs.UpdatedAt.IsZero() {
		orig.UpdatedAt = crs.UpdatedAt
	}
	return *orig, nil
}

func (repo *courseRepository) SetStudents(_ context.Context, id string, studentIDs []string) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.table[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	crs.StudentIDs = studentIDs
	return *crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
