package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/faculty"
	"github.com/olety/Diplomatool/core/thesis"
	"github.com/olety/Diplomatool/core/user"
)

type (
	profileViews struct {
		ServerDeps
	}

	thesisInfo struct {
		Thesis   thesis.Thesis
		Reviewed bool
		Defenses []thesis.Defense
	}

	profileData struct {
		User    user.User
		Faculty *faculty.Faculty
		Theses  []thesisInfo
	}
)

func registerProfileRoutes(app *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	v := profileViews{ServerDeps: deps}
	app.GET("/", v.profile, jwt, loginRequired(deps.UserSvc))
}

func (v *profileViews) profile(ctx echo.Context) error {
	c := ctx.Request().Context()
	usr, err := getContextUser(ctx, v.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	data := profileData{User: usr}
	if usr.FacultyID != "" {
		fac, err := v.FacultySvc.GetByID(c, usr.FacultyID)
		if err == nil {
			data.Faculty = &fac
		} else if !core.IsNotFound(err) {
			return errors.Wrap(err, "getting faculty")
		}
	}

	if usr.IsStudent() {
		theses, err := v.ThesisSvc.QueryByStudent(c, usr.ID)
		if err != nil {
			return errors.Wrap(err, "querying theses")
		}
		for _, th := range theses {
			info := thesisInfo{Thesis: th}
			if info.Reviewed, err = v.ThesisSvc.IsReviewed(c, th); err != nil {
				return errors.Wrap(err, "checking thesis reviews")
			}
			if info.Defenses, err = v.ThesisSvc.QueryDefenses(c, th.ID); err != nil {
				return errors.Wrap(err, "querying defenses")
			}
			data.Theses = append(data.Theses, info)
		}
	}

	return ctx.Render(http.StatusOK, "profile", data)
}
