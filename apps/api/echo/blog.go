package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/blog"
	"github.com/trezcool/baraza/core/user"
)

type blogApi struct {
	svc      *blog.Service
	usrSvc   *user.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerBlogAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := blogApi{
		svc:      deps.BlogSvc,
		usrSvc:   deps.UserSvc,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	bg := g.Group("/blogs")

	bg.GET("", api.list)
	bg.GET("/categories", api.queryCategories)
	bg.GET("/:slug", api.retrieve)

	// jwt goes per route so the public reads above keep their registrations
	writeContent := policyMiddleware(api.usrSvc, user.ActionWriteContent)
	bg.POST("", api.create, jwt, writeContent)
	bg.PUT("/:slug", api.update, jwt, writeContent)
	bg.DELETE("/:slug", api.destroy, jwt, writeContent)
}

// Handlers

func (api *blogApi) list(ctx echo.Context) error {
	filter := new(blog.Filter)
	if err := ctx.Bind(filter); err != nil {
		return core.NewValidationError(errors.New("invalid filter parameters"))
	}
	filter.Clean()
	var p Pagination
	p.Bind(ctx, api.conf)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	blogs, count, err := api.svc.Query(ctx.Request().Context(), *filter, p.Pagination, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying blogs")
	}
	if blogs == nil {
		blogs = []blog.Rendered{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(blogs, count, p.Pagination, requestURL(ctx, api.conf)))
}

func (api *blogApi) retrieve(ctx echo.Context) error {
	rendered, err := api.svc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rendered)
}

func (api *blogApi) create(ctx echo.Context) error {
	var data blog.NewBlog
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBlog")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rendered, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rendered)
}

func (api *blogApi) update(ctx echo.Context) error {
	var data blog.UpdateBlog
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBlog")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rendered, err := api.svc.Update(ctx.Request().Context(), ctx.Param("slug"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rendered)
}

func (api *blogApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("slug")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *blogApi) queryCategories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, blog.Categories)
}
