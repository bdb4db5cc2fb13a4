package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/course"
)

type courseRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	Code         string         `db:"code"`
	Description  null.String    `db:"description"`
	Department   null.String    `db:"department"`
	Credits      int            `db:"credits"`
	InstructorID string         `db:"instructor_id"`
	StudentIDs   pq.StringArray `db:"student_ids"`
	StartDate    null.Time      `db:"start_date"`
	EndDate      null.Time      `db:"end_date"`
	IsActive     null.Bool      `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r courseRow) model() course.Course {
	crs := course.Course{
		ID:           r.ID,
		Title:        r.Title,
		Code:         r.Code,
		Description:  r.Description.String,
		Department:   r.Department.String,
		Credits:      r.Credits,
		InstructorID: r.InstructorID,
		StudentIDs:   r.StudentIDs,
		StartDate:    r.StartDate.Time,
		EndDate:      r.EndDate.Time,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if crs.StudentIDs == nil {
		crs.StudentIDs = []string{}
	}
	if r.IsActive.Valid {
		crs.SetActive(r.IsActive.Bool)
	}
	return crs
}

func newCourseRow(crs course.Course) courseRow {
	return courseRow{
		ID:           crs.ID,
		Title:        crs.Title,
		Code:         crs.Code,
		Description:  null.NewString(crs.Description, crs.Description != ""),
		Department:   null.NewString(crs.Department, crs.Department != ""),
		Credits:      crs.Credits,
		InstructorID: crs.InstructorID,
		StudentIDs:   crs.StudentIDs,
		StartDate:    null.NewTime(crs.StartDate, !crs.StartDate.IsZero()),
		EndDate:      null.NewTime(crs.EndDate, !crs.EndDate.IsZero()),
		IsActive:     null.BoolFromPtr(crs.IsActive),
		CreatedAt:    crs.CreatedAt,
		UpdatedAt:    crs.UpdatedAt,
	}
}

var courseOrderFields = map[string]bool{
	"title": true, "code": true, "created_at": true,
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedCourses ...course.Course) error {
	q := `SELECT COUNT(*) FROM course WHERE code = $1`
	args := []interface{}{code}
	if len(excludedCourses) > 0 {
		ids := make([]string, 0, len(excludedCourses))
		for _, crs := range excludedCourses {
			ids = append(ids, crs.ID)
		}
		query, inArgs, err := sqlx.In(`SELECT COUNT(*) FROM course WHERE code = ? AND id NOT IN (?)`, code, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
		q = repo.db.Rebind(query)
		args = inArgs
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking code uniqueness")
	}
	if count > 0 {
		return course.ErrCodeExists
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	row := newCourseRow(crs)

	q := `INSERT INTO course (id, title, code, description, department, credits, instructor_id, student_ids, start_date, end_date, is_active, created_at, updated_at)
		VALUES (:id, :title, :code, :description, :department, :credits, :instructor_id, :student_ids, :start_date, :end_date, :is_active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return row.model(), nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	q := `SELECT * FROM course`
	var clauses []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			clauses = append(clauses, fmt.Sprintf("(title ILIKE %s OR code ILIKE %s)", p, p))
		}
		if filter.Department != "" {
			clauses = append(clauses, "department ILIKE "+arg(filter.Department))
		}
		if filter.InstructorID != "" {
			clauses = append(clauses, "instructor_id = "+arg(filter.InstructorID))
		}
		if filter.StudentID != "" {
			clauses = append(clauses, arg(filter.StudentID)+" = ANY(student_ids)")
		}
		if filter.IsActive != nil {
			clauses = append(clauses, "is_active = "+arg(*filter.IsActive))
		}
	}
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}
	q += orderBy(ordering, courseOrderFields, "created_at ASC")

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.model())
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course, isActive *bool) (course.Course, error) {
	// only save set fields
	var sets []string
	var args []interface{}
	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if crs.Title != "" {
		set("title", crs.Title)
	}
	if crs.Code != "" {
		set("code", crs.Code)
	}
	set("description", null.NewString(crs.Description, crs.Description != ""))
	set("department", null.NewString(crs.Department, crs.Department != ""))
	if crs.Credits >= 0 {
		set("credits", crs.Credits)
	}
	if crs.InstructorID != "" {
		set("instructor_id", crs.InstructorID)
	}
	if !crs.StartDate.IsZero() {
		set("start_date", crs.StartDate)
	}
	if !crs.EndDate.IsZero() {
		set("end_date", crs.EndDate)
	}
	if isActive != nil {
		set("is_active", *isActive)
	}
	if !crs.UpdatedAt.IsZero() {
		set("updated_at", crs.UpdatedAt)
	}

	args = append(args, crs.ID)
	q := fmt.Sprintf(`UPDATE course SET %s WHERE id = $%d RETURNING *`, strings.Join(sets, ", "), len(args))

	var row courseRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	return row.model(), nil
}

func (repo *courseRepository) SetStudents(ctx context.Context, id string, studentIDs []string) (course.Course, error) {
	var row courseRow
	q := `UPDATE course SET student_ids = $1, updated_at = $2 WHERE id = $3 RETURNING *`
	if err := repo.db.GetContext(ctx, &row, q, pq.StringArray(studentIDs), time.Now().UTC(), id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "setting course students")
	}
	return row.model(), nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM course WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}
