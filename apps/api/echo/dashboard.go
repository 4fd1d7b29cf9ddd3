package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/epointy/backend/core/stats"
)

type statsApi struct {
	svc stats.Service
}

func registerStatsAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := statsApi{svc: opts.StatsSvc}

	sg := g.Group("/stats", jwt)
	sg.GET("/direction", api.direction, staffMiddleware())
}

// direction serves the finance dashboard: head counts, outstanding dues and
// the recent monthly revenue/attendance series.
func (api *statsApi) direction(ctx echo.Context) error {
	ov, err := api.svc.Overview(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing stats overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}
