package echoweb

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = core.NewValidationError(errors.New("please enter a correct email and password"))
	errAuthorizationDenied  = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

type errorData struct {
	Code    int
	Message string
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler rendering our errors as pages.
// Anonymous visitors are sent to the login page and users lacking a group to the home page.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing || origErr.Code == http.StatusUnauthorized {
				redirect(ctx, loginURL(ctx.Request().URL.RequestURI()))
				return
			}
			if origErr == errAuthorizationDenied {
				redirect(ctx, "/")
				return
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = fmt.Sprint(origErr.Message)
		default:
			fields, isValidation := core.FieldErrors(err, translator)
			switch {
			case core.IsNotFound(err):
				code = http.StatusNotFound
				message = errors.Cause(err).Error()
			case isValidation:
				code = http.StatusBadRequest
				message = joinFieldErrors(fields)
			default: // any other error is a server error
				code = http.StatusInternalServerError
				message = http.StatusText(code)

				args := []interface{}{
					errors.Wrap(err, message),
					map[string]interface{}{"method": ctx.Request().Method, "path": ctx.Request().URL.Path},
				}
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					args = append(args, map[string]interface{}{"user_id": claims.Subject, "email": claims.Email})
				}
				logger.Error(message, args...)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = fmt.Sprintf("%+v", err)
		}

		// Send response
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else {
			err = ctx.Render(code, "error", errorData{Code: code, Message: message})
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

func redirect(ctx echo.Context, to string) {
	if err := ctx.Redirect(http.StatusFound, to); err != nil {
		ctx.Echo().Logger.Error(err)
	}
}

func joinFieldErrors(fields map[string]string) string {
	msgs := make([]string, 0, len(fields))
	for fld, msg := range fields {
		if fld == core.NonFieldErrors {
			msgs = append(msgs, msg)
		} else {
			msgs = append(msgs, fld+": "+msg)
		}
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
