package echoweb

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/user"
)

type accountViews struct {
	ServerDeps
}

func registerAccountRoutes(app *echo.Echo, deps ServerDeps) {
	v := accountViews{ServerDeps: deps}

	// TODO: rate limit `/login` & `/password-reset`
	app.GET("/login", v.loginForm)
	app.POST("/login", v.login)
	app.Match([]string{http.MethodGet, http.MethodPost}, "/logout", v.logout)
	app.GET("/password-reset", v.passwordResetForm)
	app.POST("/password-reset", v.passwordReset)
	app.GET("/password-reset-confirm/:uid/:token", v.passwordResetConfirmForm)
	app.POST("/password-reset-confirm/:uid/:token", v.passwordResetConfirm)
}

type (
	LoginRequest struct {
		Email    string `form:"email" json:"email" validate:"required,email"`
		Password string `form:"password" json:"password" validate:"required"`
		Next     string `form:"next" json:"-"`
	}

	loginData struct {
		Form   LoginRequest
		Errors map[string]string
		Next   string
	}

	passwordResetData struct {
		Form   user.ResetPasswordRequest
		Errors map[string]string
		Sent   bool
	}

	passwordResetConfirmData struct {
		UID    string
		Token  string
		Errors map[string]string
		Done   bool
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (v *accountViews) loginForm(ctx echo.Context) error {
	next := safeNext(ctx.QueryParam("next"))
	return ctx.Render(http.StatusOK, "login", loginData{Next: next})
}

func (v *accountViews) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	next := safeNext(data.Next)
	formErr := func(err error) error {
		fields, ok := core.FieldErrors(err, v.Translator)
		if !ok {
			return err
		}
		data.Password = ""
		return ctx.Render(http.StatusBadRequest, "login", loginData{Form: data, Errors: fields, Next: next})
	}

	if err := data.Validate(v.Validate); err != nil {
		return formErr(err)
	}
	usr, err := authenticate(ctx.Request().Context(), data.Email, data.Password, v.UserSvc)
	if err != nil {
		return formErr(err)
	}

	claims := GetUserClaims(v.Conf, usr)
	token, err := GenerateToken(v.Conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	setSessionCookie(ctx, v.Conf, token, time.Unix(claims.ExpiresAt, 0))
	return ctx.Redirect(http.StatusFound, next)
}

func (v *accountViews) logout(ctx echo.Context) error {
	clearSessionCookie(ctx, v.Conf)
	return ctx.Redirect(http.StatusFound, "/login")
}

func (v *accountViews) passwordResetForm(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "password_reset", passwordResetData{})
}

func (v *accountViews) passwordReset(ctx echo.Context) error {
	var data user.ResetPasswordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPasswordRequest")
	}
	if err := data.Validate(v.Validate); err != nil {
		fields, ok := core.FieldErrors(err, v.Translator)
		if !ok {
			return err
		}
		return ctx.Render(http.StatusBadRequest, "password_reset", passwordResetData{Form: data, Errors: fields})
	}

	if err := v.UserSvc.RequestPasswordReset(ctx.Request().Context(), data.Email); err != nil {
		// do not return errors to attackers
		v.Logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.Render(http.StatusOK, "password_reset", passwordResetData{Sent: true})
}

func (v *accountViews) passwordResetConfirmForm(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "password_reset_confirm", passwordResetConfirmData{
		UID:   ctx.Param("uid"),
		Token: ctx.Param("token"),
	})
}

func (v *accountViews) passwordResetConfirm(ctx echo.Context) error {
	data := user.ResetUserPassword{
		UID:             ctx.Param("uid"),
		Token:           ctx.Param("token"),
		Password:        ctx.FormValue("password"),
		PasswordConfirm: ctx.FormValue("password_confirm"),
	}
	view := passwordResetConfirmData{UID: data.UID, Token: data.Token}

	err := data.Validate(v.Validate)
	if err == nil {
		_, err = v.UserSvc.ConfirmPasswordReset(ctx.Request().Context(), data)
	}
	if err != nil {
		fields, ok := core.FieldErrors(err, v.Translator)
		if !ok {
			return errors.Wrap(err, "resetting password")
		}
		view.Errors = fields
		return ctx.Render(http.StatusBadRequest, "password_reset_confirm", view)
	}

	view.Done = true
	return ctx.Render(http.StatusOK, "password_reset_confirm", view)
}
