package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusbridge/backend/core/assignment"
	"github.com/campusbridge/backend/core/policy"
)

type assignmentApi struct {
	opts *Options
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := assignmentApi{opts: opts}

	ag := g.Group("/courses/:id/assignments", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create)

	// detail endpoints
	dg := ag.Group("/:assignmentID")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// loadAssignment resolves the addressed assignment within the course scope.
// Missing or foreign assignments yield a nil snapshot.
func loadAssignment(ctx echo.Context, opts *Options, courseID string) (assignment.Assignment, *policy.Assignment, error) {
	asg, err := opts.AssignmentSvc.GetByID(ctx.Request().Context(), ctx.Param("assignmentID"))
	if err != nil {
		if errors.Cause(err) == assignment.ErrNotFound {
			return assignment.Assignment{}, nil, nil
		}
		return assignment.Assignment{}, nil, errors.Wrap(err, "finding assignment by ID")
	}
	if asg.CourseID != courseID {
		return assignment.Assignment{}, nil, nil
	}
	return asg, asg.Policy(), nil
}

// Handlers

func (api *assignmentApi) query(ctx echo.Context) error {
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
	asgs, err := api.opts.AssignmentSvc.Query(ctx.Request().Context(), crs.ID, publishedOnly, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if asgs == nil {
		asgs = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *assignmentApi) create(ctx echo.Context) error {
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
		res.Assignment = &policy.Assignment{CourseID: crs.ID} // the draft being created
	}
	if err := decisionError(policy.Evaluate(actor, policy.WriteAssignment, res)); err != nil {
		return err
	}

	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	asg, err := api.opts.AssignmentSvc.Create(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}
	asg, asgSnap, err := loadAssignment(ctx, api.opts, crs.ID)
	if err != nil {
		return err
	}

	if err := decisionError(policy.Evaluate(actor, policy.ReadAssignment, policy.Resource{Course: snap, Assignment: asgSnap})); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}
	asg, asgSnap, err := loadAssignment(ctx, api.opts, crs.ID)
	if err != nil {
		return err
	}

	if err := decisionError(policy.Evaluate(actor, policy.WriteAssignment, policy.Resource{Course: snap, Assignment: asgSnap})); err != nil {
		return err
	}

	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(api.opts.Validate, asg); err != nil {
		return err
	}

	asg, err = api.opts.AssignmentSvc.Update(ctx.Request().Context(), asg.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}
	asg, asgSnap, err := loadAssignment(ctx, api.opts, crs.ID)
	if err != nil {
		return err
	}

	if err := decisionError(policy.Evaluate(actor, policy.DeleteAssignment, policy.Resource{Course: snap, Assignment: asgSnap})); err != nil {
		return err
	}

	// submissions go with the assignment
	if err := api.opts.AssignmentSvc.Delete(ctx.Request().Context(), asg.ID); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
