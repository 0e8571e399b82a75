package echoapi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/baraza/core"
)

var (
	orderingParam = "ordering"
	pageParam     = "page"
	pageSizeParam = "page_size"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// Pagination binds "page" and "page_size" query params; unparseable values
// are ignored and fall through to the configured defaults.
type Pagination struct {
	core.Pagination
}

func (p *Pagination) Bind(ctx echo.Context, conf *core.Config) {
	if v, err := strconv.Atoi(ctx.QueryParam(pageParam)); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(ctx.QueryParam(pageSizeParam)); err == nil {
		p.PageSize = v
	}
	p.Pagination = p.Clean(conf.Server.PageSize, conf.Server.MaxPageSize)
}

// requestURL rebuilds the absolute URL of the current request; pagination
// links are derived from it.
func requestURL(ctx echo.Context, conf *core.Config) *url.URL {
	u := conf.BaseURL()
	u.Path = ctx.Request().URL.Path
	u.RawQuery = ctx.Request().URL.RawQuery
	return u
}
