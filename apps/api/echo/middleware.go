package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core/user"
)

// policyMiddleware gates a route on the role policy for the given action.
func policyMiddleware(svc *user.Service, action user.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if !user.CanWrite(usr, action) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func adminMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return policyMiddleware(svc, user.ActionManageUsers)
}
