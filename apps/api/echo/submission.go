package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusbridge/backend/core/policy"
	"github.com/campusbridge/backend/core/submission"
)

type submissionApi struct {
	opts *Options
}

func registerSubmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := submissionApi{opts: opts}

	sg := g.Group("/courses/:id/assignments/:assignmentID/submissions", jwt)
	sg.GET("", api.query)
	sg.POST("", api.submit)

	// detail endpoints
	dg := sg.Group("/:submissionID")
	dg.GET("", api.retrieve)
	dg.PUT("/grade", api.grade)
}

// loadSubmission resolves the addressed submission within the assignment
// scope. Missing or foreign submissions yield a nil snapshot.
func (api *submissionApi) loadSubmission(ctx echo.Context, assignmentID string) (submission.Submission, *policy.Submission, error) {
	sub, err := api.opts.SubmissionSvc.GetByID(ctx.Request().Context(), ctx.Param("submissionID"))
	if err != nil {
		if errors.Cause(err) == submission.ErrNotFound {
			return submission.Submission{}, nil, nil
		}
		return submission.Submission{}, nil, errors.Wrap(err, "finding submission by ID")
	}
	if sub.AssignmentID != assignmentID {
		return submission.Submission{}, nil, nil
	}
	return sub, sub.Policy(), nil
}

// Handlers

// query lists the assignment's submissions for its instructor or an admin;
// a student gets a list holding just their own submission, if any.
func (api *submissionApi) query(ctx echo.Context) error {
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

	if actor.IsAdmin() || actor.ID == crs.InstructorID {
		ordering := new(Ordering)
		ordering.Bind(ctx)

		subs, err := api.opts.SubmissionSvc.Query(ctx.Request().Context(), asg.ID, ordering.Orderings)
		if err != nil {
			return errors.Wrap(err, "querying submissions")
		}
		if subs == nil {
			subs = []submission.Submission{}
		}
		return ctx.JSON(http.StatusOK, subs)
	}

	sub, err := api.opts.SubmissionSvc.GetForStudent(ctx.Request().Context(), asg.ID, actor.ID)
	if err != nil {
		if errors.Cause(err) == submission.ErrNotFound {
			return ctx.JSON(http.StatusOK, []submission.Submission{})
		}
		return errors.Wrap(err, "finding student submission")
	}
	return ctx.JSON(http.StatusOK, []submission.Submission{sub})
}

func (api *submissionApi) submit(ctx echo.Context) error {
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

	if err := decisionError(policy.Evaluate(actor, policy.CreateSubmission, policy.Resource{Course: snap, Assignment: asgSnap})); err != nil {
		return err
	}

	var data submission.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	sub, err := api.opts.SubmissionSvc.Submit(ctx.Request().Context(), asg, actor.ID, data)
	if err != nil {
		return errors.Wrap(err, "submitting work")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *submissionApi) retrieve(ctx echo.Context) error {
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
	sub, subSnap, err := api.loadSubmission(ctx, asg.ID)
	if err != nil {
		return err
	}

	res := policy.Resource{Course: snap, Assignment: asgSnap, Submission: subSnap}
	if err := decisionError(policy.Evaluate(actor, policy.ReadSubmission, res)); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) grade(ctx echo.Context) error {
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
	sub, subSnap, err := api.loadSubmission(ctx, asg.ID)
	if err != nil {
		return err
	}

	var data submission.GradeSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	res := policy.Resource{
		Course:     snap,
		Assignment: asgSnap,
		Submission: subSnap,
		Grade:      &policy.Grade{Points: *data.Points, PointsPossible: asg.PointsPossible},
	}
	if err := decisionError(policy.Evaluate(actor, policy.GradeSubmission, res)); err != nil {
		return err
	}

	sub, err = api.opts.SubmissionSvc.SetGrade(ctx.Request().Context(), sub, asg, data, actor.ID)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}
