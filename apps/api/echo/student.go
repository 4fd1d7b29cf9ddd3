package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/epointy/backend/core/attendance"
	"github.com/epointy/backend/core/user"
)

type studentApi struct {
	svc      user.Service
	scanSvc  attendance.Service
	badge    user.BadgeEncoder
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := studentApi{
		svc:      opts.UserSvc,
		scanSvc:  opts.AttendanceSvc,
		badge:    opts.Badge,
		validate: opts.Validate,
	}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query, staffMiddleware())
	sg.POST("", api.create, staffMiddleware())
	sg.GET("/:uuid", api.scan, scannerMiddleware())
	sg.GET("/:uuid/badge", api.badgePNG, staffMiddleware())
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.QueryStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []user.User{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data user.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

// scan resolves a badge UUID for the scanner UI. An unknown UUID is a normal
// outcome of scanning, not an error: the response is always 200 and the
// payload carries a `valid` flag.
func (api *studentApi) scan(ctx echo.Context) error {
	res, err := api.scanSvc.ResolveScan(ctx.Request().Context(), ctx.Param("uuid"))
	if err != nil {
		return errors.Wrap(err, "resolving scan")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studentApi) badgePNG(ctx echo.Context) error {
	usr, err := api.svc.GetStudentByScanUUID(ctx.Request().Context(), ctx.Param("uuid"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by scan UUID")
	}

	png, err := api.badge.Badge(usr.StudentUUID)
	if err != nil {
		return errors.Wrap(err, "encoding badge")
	}
	return ctx.Blob(http.StatusOK, "image/png", png)
}
