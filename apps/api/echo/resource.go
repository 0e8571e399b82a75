package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/resource"
	"github.com/trezcool/baraza/core/user"
)

type resourceApi struct {
	svc      *resource.Service
	usrSvc   *user.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerResourceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := resourceApi{
		svc:      deps.ResourceSvc,
		usrSvc:   deps.UserSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	rg := g.Group("/resources")

	rg.GET("", api.list)
	rg.GET("/:id", api.retrieve)

	// jwt goes per route so the public reads above keep their registrations
	writeContent := policyMiddleware(api.usrSvc, user.ActionWriteContent)
	rg.POST("", api.create, jwt, writeContent)
	rg.DELETE("/:id", api.destroy, jwt, writeContent)
}

// Handlers

func (api *resourceApi) list(ctx echo.Context) error {
	var p Pagination
	p.Bind(ctx, api.conf)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	resources, count, err := api.svc.Query(ctx.Request().Context(), p.Pagination, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying resources")
	}
	if resources == nil {
		resources = []resource.Resource{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(resources, count, p.Pagination, requestURL(ctx, api.conf)))
}

func (api *resourceApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	res, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *resourceApi) create(ctx echo.Context) error {
	var data resource.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *resourceApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
