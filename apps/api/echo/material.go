package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusbridge/backend/core/material"
	"github.com/campusbridge/backend/core/policy"
)

type materialApi struct {
	opts *Options
}

func registerMaterialAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := materialApi{opts: opts}

	mg := g.Group("/courses/:id/materials", jwt)
	mg.GET("", api.query)
	mg.POST("", api.create)

	// detail endpoints
	dg := mg.Group("/:materialID")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// loadMaterial resolves the addressed material within the course scope.
// Missing or foreign materials yield a nil snapshot.
func (api *materialApi) loadMaterial(ctx echo.Context, courseID string) (material.Material, *policy.Material, error) {
	mat, err := api.opts.MaterialSvc.GetByID(ctx.Request().Context(), ctx.Param("materialID"))
	if err != nil {
		if errors.Cause(err) == material.ErrNotFound {
			return material.Material{}, nil, nil
		}
		return material.Material{}, nil, errors.Wrap(err, "finding material by ID")
	}
	if mat.CourseID != courseID {
		return material.Material{}, nil, nil
	}
	return mat, mat.Policy(), nil
}

// Handlers

func (api *materialApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}

	if err := decisionError(policy.Evaluate(actor, policy.ReadCourse, policy.Resource{Course: snap})); err != nil {
		return err
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	// non-owners only see the published surface
	publishedOnly := !(actor.IsAdmin() || actor.ID == crs.InstructorID)
	mats, err := api.opts.MaterialSvc.Query(ctx.Request().Context(), crs.ID, publishedOnly, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying materials")
	}
	if mats == nil {
		mats = []material.Material{}
	}
	return ctx.JSON(http.StatusOK, mats)
}

func (api *materialApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}

	res := policy.Resource{Course: snap}
	if snap != nil {
		res.Material = &policy.Material{CourseID: crs.ID} // the draft being created
	}
	if err := decisionError(policy.Evaluate(actor, policy.WriteMaterial, res)); err != nil {
		return err
	}

	var data material.NewMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	mat, err := api.opts.MaterialSvc.Create(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating material")
	}
	return ctx.JSON(http.StatusCreated, mat)
}

func (api *materialApi) retrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}
	mat, matSnap, err := api.loadMaterial(ctx, crs.ID)
	if err != nil {
		return err
	}

	if err := decisionError(policy.Evaluate(actor, policy.ReadMaterial, policy.Resource{Course: snap, Material: matSnap})); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mat)
}

func (api *materialApi) update(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}
	mat, matSnap, err := api.loadMaterial(ctx, crs.ID)
	if err != nil {
		return err
	}

	if err := decisionError(policy.Evaluate(actor, policy.WriteMaterial, policy.Resource{Course: snap, Material: matSnap})); err != nil {
		return err
	}

	var data material.UpdateMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMaterial")
	}
	if err := data.Validate(api.opts.Validate, mat); err != nil {
		return err
	}

	mat, err = api.opts.MaterialSvc.Update(ctx.Request().Context(), mat.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating material")
	}
	return ctx.JSON(http.StatusOK, mat)
}

func (api *materialApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	_, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}
	crsID := ""
	if snap != nil {
		crsID = snap.ID
	}
	mat, matSnap, err := api.loadMaterial(ctx, crsID)
	if err != nil {
		return err
	}

	if err := decisionError(policy.Evaluate(actor, policy.DeleteMaterial, policy.Resource{Course: snap, Material: matSnap})); err != nil {
		return err
	}

	if err := api.opts.MaterialSvc.Delete(ctx.Request().Context(), mat.ID); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	return ctx.NoContent(http.StatusNoContent)
}
