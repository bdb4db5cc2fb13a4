package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/submission"
)

// attachmentList maps []submission.Attachment to a jsonb column.
type attachmentList []submission.Attachment

func (a attachmentList) Value() (driver.Value, error) {
	if a == nil {
		a = attachmentList{}
	}
	return json.Marshal(a)
}

func (a *attachmentList) Scan(src interface{}) error {
	if src == nil {
		*a = attachmentList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("incompatible type for attachmentList")
	}
	return json.Unmarshal(b, a)
}

type submissionRow struct {
	ID            string         `db:"id"`
	AssignmentID  string         `db:"assignment_id"`
	StudentID     string         `db:"student_id"`
	Content       null.String    `db:"content"`
	Attachments   attachmentList `db:"attachments"`
	Status        string         `db:"status"`
	IsLate        bool           `db:"is_late"`
	SubmittedAt   time.Time      `db:"submitted_at"`
	GradePoints   null.Int       `db:"grade_points"`
	GradeFeedback null.String    `db:"grade_feedback"`
	GradedBy      null.String    `db:"graded_by"`
	GradedAt      null.Time      `db:"graded_at"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r submissionRow) model() submission.Submission {
	sub := submission.Submission{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		Content:      r.Content.String,
		Attachments:  r.Attachments,
		Status:       r.Status,
		IsLate:       r.IsLate,
		SubmittedAt:  r.SubmittedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.GradePoints.Valid {
		sub.Grade = &submission.Grade{
			Points:   r.GradePoints.Int,
			Feedback: r.GradeFeedback.String,
			GradedBy: r.GradedBy.String,
			GradedAt: r.GradedAt.Time,
		}
	}
	return sub
}

func newSubmissionRow(sub submission.Submission) submissionRow {
	row := submissionRow{
		ID:           sub.ID,
		AssignmentID: sub.AssignmentID,
		StudentID:    sub.StudentID,
		Content:      null.NewString(sub.Content, sub.Content != ""),
		Attachments:  sub.Attachments,
		Status:       sub.Status,
		IsLate:       sub.IsLate,
		SubmittedAt:  sub.SubmittedAt,
		CreatedAt:    sub.CreatedAt,
		UpdatedAt:    sub.UpdatedAt,
	}
	if sub.Grade != nil {
		row.GradePoints = null.IntFrom(sub.Grade.Points)
		row.GradeFeedback = null.NewString(sub.Grade.Feedback, sub.Grade.Feedback != "")
		row.GradedBy = null.StringFrom(sub.Grade.GradedBy)
		row.GradedAt = null.TimeFrom(sub.Grade.GradedAt)
	}
	return row
}

var submissionOrderFields = map[string]bool{
	"submitted_at": true, "status": true,
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) submission.Repository {
	return &submissionRepository{db: db}
}

func (repo *submissionRepository) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM submission WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "getting submission")
	}
	return row.model(), nil
}

func (repo *submissionRepository) GetStudentSubmission(ctx context.Context, assignmentID, studentID string) (submission.Submission, error) {
	var row submissionRow
	q := `SELECT * FROM submission WHERE assignment_id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, assignmentID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "getting student submission")
	}
	return row.model(), nil
}

func (repo *submissionRepository) QuerySubmissions(ctx context.Context, assignmentID string, ordering []core.DBOrdering) ([]submission.Submission, error) {
	q := `SELECT * FROM submission WHERE assignment_id = $1`
	q += orderBy(ordering, submissionOrderFields, "submitted_at ASC")

	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, q, assignmentID); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}

	subs := make([]submission.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.model())
	}
	return subs, nil
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	sub.ID = uuid.New().String()
	row := newSubmissionRow(sub)

	q := `INSERT INTO submission (id, assignment_id, student_id, content, attachments, status, is_late, submitted_at, grade_points, grade_feedback, graded_by, graded_at, created_at, updated_at)
		VALUES (:id, :assignment_id, :student_id, :content, :attachments, :status, :is_late, :submitted_at, :grade_points, :grade_feedback, :graded_by, :graded_at, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return submission.Submission{}, errors.Wrap(err, "creating submission")
	}
	return sub, nil
}

// UpdateSubmission replaces the whole row; submit and grade both pass a
// fully populated submission.
func (repo *submissionRepository) UpdateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	row := newSubmissionRow(sub)

	q := `UPDATE submission SET content = :content, attachments = :attachments, status = :status,
		is_late = :is_late, submitted_at = :submitted_at, grade_points = :grade_points,
		grade_feedback = :grade_feedback, graded_by = :graded_by, graded_at = :graded_at,
		updated_at = :updated_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return submission.Submission{}, submission.ErrNotFound
	}
	return sub, nil
}

func (repo *submissionRepository) DeleteSubmissionsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM submission WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting submissions")
	}
	return nil
}
