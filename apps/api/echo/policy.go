package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusbridge/backend/core/course"
	"github.com/campusbridge/backend/core/policy"
)

// loadCourse resolves the course a request is scoped to, along with its
// policy snapshot. A missing course yields a nil snapshot; the evaluator
// turns that into a not-found verdict, keeping the 404-before-403 ordering
// in one place.
func loadCourse(ctx echo.Context, svc *course.Service) (course.Course, *policy.Course, error) {
	crs, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return course.Course{}, nil, nil
		}
		return course.Course{}, nil, errors.Wrap(err, "finding course by ID")
	}
	return crs, crs.Policy(), nil
}
