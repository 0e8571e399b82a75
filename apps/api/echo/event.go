package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/event"
	"github.com/trezcool/baraza/core/user"
)

type eventApi struct {
	svc      *event.Service
	usrSvc   *user.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerEventAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := eventApi{
		svc:      deps.EventSvc,
		usrSvc:   deps.UserSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	eg := g.Group("/events")

	eg.GET("", api.list)
	eg.GET("/:slug", api.retrieve)

	// jwt goes per route so the public reads above keep their registrations
	writeContent := policyMiddleware(api.usrSvc, user.ActionWriteContent)
	eg.POST("", api.create, jwt, writeContent)
	eg.DELETE("/:slug", api.destroy, jwt, writeContent)
}

// Handlers

func (api *eventApi) list(ctx echo.Context) error {
	var p Pagination
	p.Bind(ctx, api.conf)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	events, count, err := api.svc.Query(ctx.Request().Context(), p.Pagination, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []event.Rendered{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(events, count, p.Pagination, requestURL(ctx, api.conf)))
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	rendered, err := api.svc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rendered)
}

func (api *eventApi) create(ctx echo.Context) error {
	var data event.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rendered, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rendered)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("slug")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
