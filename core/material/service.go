package material

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/campusbridge/backend/core"
)

var ErrNotFound = errors.New("material not found")

type (
	Repository interface {
		CreateMaterial(ctx context.Context, mat Material) (Material, error)
		GetMaterial(ctx context.Context, id string) (Material, error)
		// QueryMaterials lists the materials of a course; publishedOnly narrows
		// to published ones.
		QueryMaterials(ctx context.Context, courseID string, publishedOnly bool, ordering []core.DBOrdering) ([]Material, error)
		UpdateMaterial(ctx context.Context, mat Material, isPublished *bool) (Material, error)
		DeleteMaterialsByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, courseID string, nm NewMaterial) (Material, error) {
	now := time.Now().UTC()
	mat := Material{
		CourseID:    courseID,
		Title:       nm.Title,
		Description: nm.Description,
		Type:        nm.Type,
		URL:         nm.URL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	mat.SetPublished(nm.IsPublished != nil && *nm.IsPublished)
	return svc.repo.CreateMaterial(ctx, mat)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Material, error) {
	return svc.repo.GetMaterial(ctx, id)
}

func (svc *Service) Query(ctx context.Context, courseID string, publishedOnly bool, ordering []core.DBOrdering) ([]Material, error) {
	return svc.repo.QueryMaterials(ctx, courseID, publishedOnly, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, um UpdateMaterial) (Material, error) {
	mat := Material{
		ID:          id,
		Title:       um.Title,
		Description: um.Description,
		Type:        um.Type,
		URL:         um.URL,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateMaterial(ctx, mat, um.IsPublished)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteMaterialsByID(ctx, ids...)
}
