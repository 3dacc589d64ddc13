package echoweb

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core/user"
)

// loginRequired loads the session user into the context.
func loginRequired(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextUser(ctx, svc); err != nil {
				return errors.Wrap(err, "getting context user")
			}
			return next(ctx)
		}
	}
}

// groupMiddleware lets through members of group and admins.
// Everybody else is sent back to the home page.
func groupMiddleware(group string, svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if user.CanAccess(usr, group) {
				return next(ctx)
			}
			return errAuthorizationDenied
		}
	}
}
