package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusbridge/backend/core/attendance"
	"github.com/campusbridge/backend/core/policy"
)

type attendanceApi struct {
	opts *Options
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := attendanceApi{opts: opts}

	ag := g.Group("/courses/:id/attendance", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create)

	// detail endpoints
	dg := ag.Group("/:recordID")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// loadRecord resolves the addressed attendance record within the course
// scope. Missing or foreign records yield a nil snapshot.
func (api *attendanceApi) loadRecord(ctx echo.Context, courseID string) (attendance.Record, *policy.AttendanceRecord, error) {
	rec, err := api.opts.AttendanceSvc.GetByID(ctx.Request().Context(), ctx.Param("recordID"))
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return attendance.Record{}, nil, nil
		}
		return attendance.Record{}, nil, errors.Wrap(err, "finding attendance record by ID")
	}
	if rec.CourseID != courseID {
		return attendance.Record{}, nil, nil
	}
	return rec, rec.Policy(), nil
}

// Handlers

// query lists a course's attendance. Instructors and admins get the full
// records; enrolled students get the per-day view of their own status.
func (api *attendanceApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}

	d := policy.Evaluate(actor, policy.ReadAttendance, policy.Resource{Course: snap})
	if err := decisionError(d); err != nil {
		return err
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	if d.OwnEntriesOnly {
		days, err := api.opts.AttendanceSvc.QueryForStudent(ctx.Request().Context(), crs.ID, actor.ID, ordering.Orderings)
		if err != nil {
			return errors.Wrap(err, "querying attendance self-view")
		}
		if days == nil {
			days = []attendance.StudentDay{}
		}
		return ctx.JSON(http.StatusOK, days)
	}

	recs, err := api.opts.AttendanceSvc.Query(ctx.Request().Context(), crs.ID, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}

	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	res := policy.Resource{Course: snap}
	if snap != nil {
		exists, err := api.opts.AttendanceSvc.ExistsForDay(ctx.Request().Context(), crs.ID, data.Date)
		if err != nil {
			return errors.Wrap(err, "checking attendance day")
		}
		res.AttendanceExists = exists
		res.Students = attendance.EntryRefs(snap, data.Entries)
	}
	if err := decisionError(policy.Evaluate(actor, policy.WriteAttendance, res)); err != nil {
		return err
	}

	rec, err := api.opts.AttendanceSvc.Create(ctx.Request().Context(), crs.ID, data, actor.ID)
	if err != nil {
		return errors.Wrap(err, "creating attendance record")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}
	rec, recSnap, err := api.loadRecord(ctx, crs.ID)
	if err != nil {
		return err
	}
	if recSnap == nil {
		return errHttpNotFound
	}

	d := policy.Evaluate(actor, policy.ReadAttendance, policy.Resource{Course: snap, Attendance: recSnap})
	if err := decisionError(d); err != nil {
		return err
	}
	if d.OwnEntriesOnly {
		return ctx.JSON(http.StatusOK, rec.ForStudent(actor.ID))
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}
	crs, snap, err := loadCourse(ctx, api.opts.CourseSvc)
	if err != nil {
		return err
	}
	rec, recSnap, err := api.loadRecord(ctx, crs.ID)
	if err != nil {
		return err
	}
	if recSnap == nil {
		return errHttpNotFound
	}

	var data attendance.UpdateRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRecord")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	// updating an existing record is not a duplicate of its own day
	res := policy.Resource{
		Course:     snap,
		Attendance: recSnap,
		Students:   attendance.EntryRefs(snap, data.Entries),
	}
	if err := decisionError(policy.Evaluate(actor, policy.WriteAttendance, res)); err != nil {
		return err
	}

	rec, err = api.opts.AttendanceSvc.Update(ctx.Request().Context(), rec, data)
	if err != nil {
		return errors.Wrap(err, "updating attendance record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
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
	rec, recSnap, err := api.loadRecord(ctx, crsID)
	if err != nil {
		return err
	}

	if err := decisionError(policy.Evaluate(actor, policy.DeleteAttendance, policy.Resource{Course: snap, Attendance: recSnap})); err != nil {
		return err
	}

	if err := api.opts.AttendanceSvc.Delete(ctx.Request().Context(), rec.ID); err != nil {
		return errors.Wrap(err, "deleting attendance record")
	}
	return ctx.NoContent(http.StatusNoContent)
}
