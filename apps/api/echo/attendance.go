package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/epointy/backend/core/attendance"
	"github.com/epointy/backend/core/user"
)

type attendanceApi struct {
	svc      attendance.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := attendanceApi{
		svc:      opts.AttendanceSvc,
		userSvc:  opts.UserSvc,
		validate: opts.Validate,
	}

	ag := g.Group("/attendances", jwt)
	ag.POST("", api.mark)
	ag.GET("", api.query)
}

// Handlers

// mark upserts the day's attendance record: 201 when a new record was
// written, 200 when the day's existing record was updated.
func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.MarkAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	att, created, err := api.svc.Mark(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}
	if created {
		return ctx.JSON(http.StatusCreated, att)
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	courseID, err := strconv.Atoi(ctx.QueryParam("course_id"))
	if err != nil {
		return errHttpNotFound
	}
	filter := attendance.QueryFilter{CourseID: courseID}
	if day := ctx.QueryParam("day"); day != "" {
		d, perr := time.Parse("2006-01-02", day)
		if perr != nil {
			return ctx.JSON(http.StatusOK, []attendance.Attendance{})
		}
		filter.Day = d
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	atts, err := api.svc.Query(ctx.Request().Context(), ctxUsr, filter)
	if err != nil {
		return err
	}
	if atts == nil {
		atts = []attendance.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}
