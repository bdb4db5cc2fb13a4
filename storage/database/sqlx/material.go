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
	"github.com/campusbridge/backend/core/material"
)

type materialRow struct {
	ID          string      `db:"id"`
	CourseID    string      `db:"course_id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	Type        string      `db:"type"`
	URL         null.String `db:"url"`
	IsPublished null.Bool   `db:"is_published"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r materialRow) model() material.Material {
	mat := material.Material{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Title:       r.Title,
		Description: r.Description.String,
		Type:        r.Type,
		URL:         r.URL.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.IsPublished.Valid {
		mat.SetPublished(r.IsPublished.Bool)
	}
	return mat
}

func newMaterialRow(mat material.Material) materialRow {
	return materialRow{
		ID:          mat.ID,
		CourseID:    mat.CourseID,
		Title:       mat.Title,
		Description: null.NewString(mat.Description, mat.Description != ""),
		Type:        mat.Type,
		URL:         null.NewString(mat.URL, mat.URL != ""),
		IsPublished: null.BoolFromPtr(mat.IsPublished),
		CreatedAt:   mat.CreatedAt,
		UpdatedAt:   mat.UpdatedAt,
	}
}

var materialOrderFields = map[string]bool{
	"title": true, "created_at": true,
}

type materialRepository struct {
	db *sqlx.DB
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *sqlx.DB) material.Repository {
	return &materialRepository{db: db}
}

func (repo *materialRepository) CreateMaterial(ctx context.Context, mat material.Material) (material.Material, error) {
	mat.ID = uuid.New().String()
	row := newMaterialRow(mat)

	q := `INSERT INTO material (id, course_id, title, description, type, url, is_published, created_at, updated_at)
		VALUES (:id, :course_id, :title, :description, :type, :url, :is_published, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return material.Material{}, errors.Wrap(err, "creating material")
	}
	return mat, nil
}

func (repo *materialRepository) GetMaterial(ctx context.Context, id string) (material.Material, error) {
	var row materialRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM material WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return material.Material{}, material.ErrNotFound
		}
		return material.Material{}, errors.Wrap(err, "getting material")
	}
	return row.model(), nil
}

func (repo *materialRepository) QueryMaterials(ctx context.Context, courseID string, publishedOnly bool, ordering []core.DBOrdering) ([]material.Material, error) {
	q := `SELECT * FROM material WHERE course_id = $1`
	args := []interface{}{courseID}
	if publishedOnly {
		q += ` AND is_published = true`
	}
	q += orderBy(ordering, materialOrderFields, "created_at ASC")

	var rows []materialRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}

	mats := make([]material.Material, 0, len(rows))
	for _, row := range rows {
		mats = append(mats, row.model())
	}
	return mats, nil
}

func (repo *materialRepository) UpdateMaterial(ctx context.Context, mat material.Material, isPublished *bool) (material.Material, error) {
	// only save set fields
	var sets []string
	var args []interface{}
	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if mat.Title != "" {
		set("title", mat.Title)
	}
	set("description", null.NewString(mat.Description, mat.Description != ""))
	if mat.Type != "" {
		set("type", mat.Type)
	}
	set("url", null.NewString(mat.URL, mat.URL != ""))
	if isPublished != nil {
		set("is_published", *isPublished)
	}
	if !mat.UpdatedAt.IsZero() {
		set("updated_at", mat.UpdatedAt)
	}

	args = append(args, mat.ID)
	q := fmt.Sprintf(`UPDATE material SET %s WHERE id = $%d RETURNING *`, strings.Join(sets, ", "), len(args))

	var row materialRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return material.Material{}, material.ErrNotFound
		}
		return material.Material{}, errors.Wrap(err, "updating material")
	}
	return row.model(), nil
}

func (repo *materialRepository) DeleteMaterialsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM material WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting materials")
	}
	return nil
}
