package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/assignment"
)

type assignmentRow struct {
	ID             string      `db:"id"`
	CourseID       string      `db:"course_id"`
	Title          string      `db:"title"`
	Description    null.String `db:"description"`
	DueDate        time.Time   `db:"due_date"`
	PointsPossible int         `db:"points_possible"`
	SubmissionType string      `db:"submission_type"`
	IsPublished    null.Bool   `db:"is_published"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func (r assignmentRow) model() assignment.Assignment {
	asg := assignment.Assignment{
		ID:             r.ID,
		CourseID:       r.CourseID,
		Title:          r.Title,
		Description:    r.Description.String,
		DueDate:        r.DueDate,
		PointsPossible: r.PointsPossible,
		SubmissionType: r.SubmissionType,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.IsPublished.Valid {
		asg.SetPublished(r.IsPublished.Bool)
	}
	return asg
}

func newAssignmentRow(asg assignment.Assignment) assignmentRow {
	return assignmentRow{
		ID:             asg.ID,
		CourseID:       asg.CourseID,
		Title:          asg.Title,
		Description:    null.NewString(asg.Description, asg.Description != ""),
		DueDate:        asg.DueDate,
		PointsPossible: asg.PointsPossible,
		SubmissionType: asg.SubmissionType,
		IsPublished:    null.BoolFromPtr(asg.IsPublished),
		CreatedAt:      asg.CreatedAt,
		UpdatedAt:      asg.UpdatedAt,
	}
}

var assignmentOrderFields = map[string]bool{
	"title": true, "due_date": true, "created_at": true,
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	asg.ID = uuid.New().String()
	row := newAssignmentRow(asg)

	q := `INSERT INTO assignment (id, course_id, title, description, due_date, points_possible, submission_type, is_published, created_at, updated_at)
		VALUES (:id, :course_id, :title, :description, :due_date, :points_possible, :submission_type, :is_published, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return asg, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM assignment WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "getting assignment")
	}
	return row.model(), nil
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, courseID string, publishedOnly bool, ordering []core.DBOrdering) ([]assignment.Assignment, error) {
	q := `SELECT * FROM assignment WHERE course_id = $1`
	args := []interface{}{courseID}
	if publishedOnly {
		q += ` AND is_published = true`
	}
	q += orderBy(ordering, assignmentOrderFields, "due_date ASC")

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}

	asgs := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, row.model())
	}
	return asgs, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, asg assignment.Assignment, isPublished *bool) (assignment.Assignment, error) {
	// only save set fields
	var sets []string
	var args []interface{}
	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if asg.Title != "" {
		set("title", asg.Title)
	}
	set("description", null.NewString(asg.Description, asg.Description != ""))
	if !asg.DueDate.IsZero() {
		set("due_date", asg.DueDate)
	}
	if asg.PointsPossible > 0 {
		set("points_possible", asg.PointsPossible)
	}
	if asg.SubmissionType != "" {
		set("submission_type", asg.SubmissionType)
	}
	if isPublished != nil {
		set("is_published", *isPublished)
	}
	if !asg.UpdatedAt.IsZero() {
		set("updated_at", asg.UpdatedAt)
	}

	args = append(args, asg.ID)
	q := fmt.Sprintf(`UPDATE assignment SET %s WHERE id = $%d RETURNING *`, strings.Join(sets, ", "), len(args))

	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	return row.model(), nil
}

// DeleteAssignmentsByID relies on the submission FK cascading on delete.
func (repo *assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM assignment WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	return nil
}
