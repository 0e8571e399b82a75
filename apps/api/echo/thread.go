package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/thread"
	"github.com/trezcool/baraza/core/user"
)

type threadApi struct {
	svc        *thread.Service
	usrSvc     *user.Service
	conf       *core.Config
	validate   *validator.Validate
	translator ut.Translator
}

func registerThreadAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := threadApi{
		svc:        deps.ThreadSvc,
		usrSvc:     deps.UserSvc,
		conf:       deps.Conf,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	tg := g.Group("/threads")

	// read endpoints are public
	tg.GET("", api.list)
	tg.GET("/colors", api.queryColors)
	tg.GET("/subjects", api.querySubjects)
	tg.GET("/:id", api.retrieve)

	// authed endpoints; jwt goes per route so the public reads above keep
	// their registrations (an empty-prefix subgroup re-registers "" and "/*")
	tg.POST("", api.create, jwt, policyMiddleware(api.usrSvc, user.ActionCreateThread))
	tg.DELETE("/:id", api.destroy, jwt)
}

// Handlers

// list returns one page of root threads, newest first; with ?parent_thread=N
// it returns N's direct replies, oldest first, instead. An unknown parent
// yields an empty page rather than an error.
func (api *threadApi) list(ctx echo.Context) error {
	var p Pagination
	p.Bind(ctx, api.conf)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	var summaries []thread.Summary
	var count int
	var err error

	if raw := ctx.QueryParam("parent_thread"); raw != "" {
		parentID, perr := strconv.Atoi(raw)
		if perr != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "parent_thread", Error: "invalid thread id"})
		}
		summaries, count, err = api.svc.ListByParent(ctx.Request().Context(), parentID, p.Pagination, ordering.Orderings...)
	} else {
		category := ctx.QueryParam("category")
		if category == "" {
			category = ctx.QueryParam("subject")
		}
		search := ctx.QueryParam("search")
		summaries, count, err = api.svc.ListRoots(ctx.Request().Context(), p.Pagination, category, search, ordering.Orderings...)
	}
	if err != nil {
		return errors.Wrap(err, "querying threads")
	}
	if summaries == nil {
		summaries = []thread.Summary{}
	}
	return ctx.JSON(http.StatusOK, core.NewPage(summaries, count, p.Pagination, requestURL(ctx, api.conf)))
}

func (api *threadApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	detail, err := api.svc.GetDetail(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *threadApi) create(ctx echo.Context) error {
	var data thread.NewThread
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewThread")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	summary, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, summary)
}

// destroy deletes a thread and its whole reply subtree; only the author or
// an admin may do it.
func (api *threadApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	th, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if th.UserID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *threadApi) queryColors(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, thread.Palette)
}

func (api *threadApi) querySubjects(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, thread.Subjects)
}
