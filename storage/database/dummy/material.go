package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/material"
)

type materialRepository struct {
	db *materialTable
}

var _ material.Repository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *DB) material.Repository {
	return &materialRepository{db: db.material}
}

func (repo *materialRepository) CreateMaterial(_ context.Context, mat material.Material) (material.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	mat.ID = uuid.New().String()
	repo.db.table[mat.ID] = &mat
	return mat, nil
}

func (repo *materialRepository) GetMaterial(_ context.Context, id string) (material.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mat, ok := repo.db.table[id]; ok {
		return *mat, nil
	}
	return material.Material{}, material.ErrNotFound
}

func (repo *materialRepository) QueryMaterials(_ context.Context, courseID string, publishedOnly bool, ordering []core.DBOrdering) ([]material.Material, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mats := make([]material.Material, 0)
	for _, mat := range repo.db.table {
		if mat.CourseID != courseID {
			continue
		}
		if publishedOnly && !mat.Published() {
			continue
		}
		mats = append(mats, *mat)
	}

	sortMaterials(mats, ordering)
	return mats, nil
}

func sortMaterials(mats []material.Material, ordering []core.DBOrdering) {
	for i := len(ordering) - 1; i >= 0; i-- {
		ord := ordering[i]
		sort.SliceStable(mats, func(a, b int) bool {
			var less bool
			switch ord.Field {
			case "title":
				less = mats[a].Title < mats[b].Title
			case "created_at":
				less = mats[a].CreatedAt.Before(mats[b].CreatedAt)
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

func (repo *materialRepository) UpdateMaterial(_ context.Context, mat material.Material, isPublished *bool) (material.Material, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[mat.ID]
	if !ok {
		return material.Material{}, material.ErrNotFound
	}
	if mat.Title != "" {
		orig.Title = mat.Title
	}
	orig.Description = mat.Description
	if mat.Type != "" {
		orig.Type = mat.Type
	}
	orig.URL = mat.URL
	if isPublished != nil {
		orig.IsPublished = isPublished
	}
	if !mat.UpdatedAt.IsZero() {
		orig.UpdatedAt = mat.UpdatedAt
	}
	return *orig, nil
}

func (repo *materialRepository) DeleteMaterialsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
