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

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/attendance"
)

// entryList maps []attendance.Entry to a jsonb column.
type entryList []attendance.Entry

func (e entryList) Value() (driver.Value, error) {
	if e == nil {
		e = entryList{}
	}
	return json.Marshal(e)
}

func (e *entryList) Scan(src interface{}) error {
	if src == nil {
		*e = entryList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("incompatible type for entryList")
	}
	return json.Unmarshal(b, e)
}

type attendanceRow struct {
	ID         string    `db:"id"`
	CourseID   string    `db:"course_id"`
	Date       time.Time `db:"date"`
	Entries    entryList `db:"entries"`
	RecordedBy string    `db:"recorded_by"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r attendanceRow) model() attendance.Record {
	return attendance.Record{
		ID:         r.ID,
		CourseID:   r.CourseID,
		Date:       attendance.DayOf(r.Date),
		Entries:    r.Entries,
		RecordedBy: r.RecordedBy,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func newAttendanceRow(rec attendance.Record) attendanceRow {
	return attendanceRow{
		ID:         rec.ID,
		CourseID:   rec.CourseID,
		Date:       rec.Date,
		Entries:    rec.Entries,
		RecordedBy: rec.RecordedBy,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

var attendanceOrderFields = map[string]bool{
	"date": true, "created_at": true,
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = uuid.New().String()
	row := newAttendanceRow(rec)

	q := `INSERT INTO attendance (id, course_id, date, entries, recorded_by, created_at, updated_at)
		VALUES (:id, :course_id, :date, :entries, :recorded_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return attendance.Record{}, errors.Wrap(err, "creating attendance record")
	}
	return rec, nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, id string) (attendance.Record, error) {
	var row attendanceRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM attendance WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "getting attendance record")
	}
	return row.model(), nil
}

func (repo *attendanceRepository) GetRecordByDay(ctx context.Context, courseID string, day time.Time) (attendance.Record, error) {
	var row attendanceRow
	q := `SELECT * FROM attendance WHERE course_id = $1 AND date = $2`
	if err := repo.db.GetContext(ctx, &row, q, courseID, attendance.DayOf(day)); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "getting attendance record by day")
	}
	return row.model(), nil
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, courseID string, ordering []core.DBOrdering) ([]attendance.Record, error) {
	q := `SELECT * FROM attendance WHERE course_id = $1`
	q += orderBy(ordering, attendanceOrderFields, "date ASC")

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}

	recs := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.model())
	}
	return recs, nil
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	row := newAttendanceRow(rec)

	q := `UPDATE attendance SET entries = :entries, updated_at = :updated_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return rec, nil
}

func (repo *attendanceRepository) DeleteRecordsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM attendance WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting attendance records")
	}
	return nil
}
