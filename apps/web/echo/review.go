package echoweb

import (
	"mime"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/review"
	"github.com/olety/Diplomatool/core/user"
)

type (
	reviewViews struct {
		ServerDeps
	}

	reviewListData struct {
		Items         []review.Item
		ShowCompleted bool
		Submitted     bool
		Errors        map[string]string
	}
)

func registerReviewRoutes(app *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	v := reviewViews{ServerDeps: deps}

	g := app.Group("/reviews", jwt, groupMiddleware(user.GroupReviewer, deps.UserSvc))
	g.GET("", v.list)
	g.POST("", v.submit)
	g.GET("/:id/file", v.download)
}

func (v *reviewViews) render(ctx echo.Context, code int, data reviewListData) error {
	usr, err := getContextUser(ctx, v.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	data.Items, err = v.ReviewSvc.QueryByAuthor(ctx.Request().Context(), usr.ID, !data.ShowCompleted)
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}
	return ctx.Render(code, "review_list", data)
}

// showCompleted reads the show_completed toggle; anything but "False" shows every review.
func showCompleted(ctx echo.Context) bool {
	return ctx.FormValue("show_completed") != "False"
}

func (v *reviewViews) list(ctx echo.Context) error {
	return v.render(ctx, http.StatusOK, reviewListData{ShowCompleted: showCompleted(ctx)})
}

// submit uploads a review document when the form carries one,
// otherwise it only applies the show_completed toggle.
func (v *reviewViews) submit(ctx echo.Context) error {
	data := reviewListData{ShowCompleted: showCompleted(ctx)}

	reviewID := ctx.FormValue("review_hidden_id")
	fh, fErr := ctx.FormFile("review_file")
	if fErr != nil && fErr != http.ErrMissingFile && fErr != http.ErrNotMultipart {
		return errors.Wrap(fErr, "reading review_file")
	}
	if reviewID == "" && fh == nil {
		return v.render(ctx, http.StatusOK, data)
	}

	usr, err := getContextUser(ctx, v.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	upload := review.UploadReview{ReviewID: reviewID}
	if fh != nil {
		f, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening review_file")
		}
		defer f.Close()
		upload.Filename = fh.Filename
		upload.Content = f
	}

	err = upload.Validate(v.Validate)
	if err == nil {
		_, err = v.ReviewSvc.Upload(ctx.Request().Context(), usr, upload)
	}
	if err != nil {
		fields, ok := core.FieldErrors(err, v.Translator)
		if !ok {
			return errors.Wrap(err, "uploading review")
		}
		data.Errors = fields
		return v.render(ctx, http.StatusBadRequest, data)
	}

	data.Submitted = true
	return v.render(ctx, http.StatusOK, data)
}

// download streams the review document to its author or an admin.
func (v *reviewViews) download(ctx echo.Context) error {
	c := ctx.Request().Context()
	usr, err := getContextUser(ctx, v.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	r, err := v.ReviewSvc.GetByID(c, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting review")
	}
	if r.AuthorID != usr.ID && !usr.IsAdmin {
		return errors.Wrap(review.ErrNotFound, "review of another reviewer")
	}

	rc, err := v.ReviewSvc.OpenFile(c, r)
	if err != nil {
		return errors.Wrap(err, "opening review file")
	}
	defer rc.Close()

	name := path.Base(r.File)
	ctype := mime.TypeByExtension(path.Ext(name))
	if ctype == "" {
		ctype = echo.MIMEOctetStream
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	return ctx.Stream(http.StatusOK, ctype, rc)
}
