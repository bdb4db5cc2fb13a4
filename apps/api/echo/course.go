package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusbridge/backend/core/course"
	"github.com/campusbridge/backend/core/policy"
)

type courseApi struct {
	opts *Options
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := courseApi{opts: opts}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create, facultyOrAdminMiddleware())
	cg.GET("", api.query)

	// detail endpoints
	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/students", api.enroll)
	dg.DELETE("/students/:studentID", api.unenroll)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	// the creator becomes the instructor; only admin may assign someone else
	if data.InstructorID == "" {
		data.InstructorID = actor.ID
	} else if data.InstructorID != actor.ID && !actor.IsAdmin() {
		return errHttpForbidden
	}

	if err := data.Validate(api.opts.Validate, api.opts.CourseSvc); err != nil {
		return err
	}

	crs, err := api.opts.CourseSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.opts.CourseSvc.QueryForActor(ctx.Request().Context(), actor, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
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
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}

	if err := decisionError(policy.Evaluate(actor, policy.WriteCourse, policy.Resource{Course: snap})); err != nil {
		return err
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if !actor.IsAdmin() {
		// course code and instructor reassignment are admin-only
		if data.Code != "" && data.Code != crs.Code {
			return errHttpForbidden
		}
		if data.InstructorID != "" && data.InstructorID != crs.InstructorID {
			return errHttpForbidden
		}
	}
	if err := data.Validate(api.opts.Validate, crs, api.opts.CourseSvc); err != nil {
		return err
	}

	crs, err = api.opts.CourseSvc.Update(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}

	if err := decisionError(policy.Evaluate(actor, policy.DeleteCourse, policy.Resource{Course: snap})); err != nil {
		return err
	}

	if err := api.opts.CourseSvc.Delete(ctx.Request().Context(), crs.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}

	var data course.EnrollStudents
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollStudents")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	res := policy.Resource{Course: snap}
	if snap != nil {
		refs, err := api.opts.CourseSvc.ResolveStudentRefs(ctx.Request().Context(), crs, data.StudentIDs)
		if err != nil {
			return err
		}
		res.Students = refs
	}
	if err := decisionError(policy.Evaluate(actor, policy.EnrollStudents, res)); err != nil {
		return err
	}

	crs, err = api.opts.CourseSvc.Enroll(ctx.Request().Context(), crs, data.StudentIDs)
	if err != nil {
		return errors.Wrap(err, "enrolling students")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) unenroll(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}

	studentID := ctx.Param("studentID")
	res := policy.Resource{Course: snap}
	if snap != nil {
		refs, err := api.opts.CourseSvc.ResolveStudentRefs(ctx.Request().Context(), crs, []string{studentID})
		if err != nil {
			return err
		}
		res.Students = refs
	}
	if err := decisionError(policy.Evaluate(actor, policy.UnenrollStudent, res)); err != nil {
		return err
	}

	crs, err = api.opts.CourseSvc.Unenroll(ctx.Request().Context(), crs, studentID)
	if err != nil {
		return errors.Wrap(err, "unenrolling student")
	}
	return ctx.JSON(http.StatusOK, crs)
}
