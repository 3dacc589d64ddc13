package echoweb

import (
	htmltmpl "html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/user"
	appfs "github.com/olety/Diplomatool/fs"
)

const (
	webTemplatesDir = "assets/templates/web"
	layoutName      = "_base.gohtml"
	dateLayout      = "2006-01-02"
	csrfContextKey  = "csrf" // middleware.DefaultCSRFConfig.ContextKey
)

// page is the value every web template is executed with.
type page struct {
	User *user.User // nil for anonymous visitors
	CSRF string
	Data interface{}
}

type templateRenderer struct {
	templates map[string]*htmltmpl.Template // {page name: layout + page}
}

var _ echo.Renderer = (*templateRenderer)(nil)

var templateFuncs = htmltmpl.FuncMap{
	"date": formatDate,
	"join": strings.Join,
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func newTemplateRenderer(conf *core.Config) (*templateRenderer, error) {
	entries, err := fs.ReadDir(appfs.FS, webTemplatesDir)
	if err != nil {
		return nil, err
	}

	r := &templateRenderer{templates: make(map[string]*htmltmpl.Template, len(entries))}
	for _, e := range entries {
		fname := e.Name()
		if e.IsDir() || strings.HasPrefix(fname, "_") || path.Ext(fname) != ".gohtml" {
			continue
		}
		tmpl, err := htmltmpl.New(layoutName).Funcs(templateFuncs).ParseFS(
			appfs.FS,
			path.Join(webTemplatesDir, layoutName),
			path.Join(webTemplatesDir, fname),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", fname)
		}
		if conf.Debug || conf.TestMode {
			tmpl = tmpl.Option("missingkey=error")
		}
		r.templates[strings.TrimSuffix(fname, ".gohtml")] = tmpl
	}
	return r, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, ctx echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}

	p := page{Data: data}
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		p.User = &usr
	}
	if token, ok := ctx.Get(csrfContextKey).(string); ok {
		p.CSRF = token
	}
	return tmpl.ExecuteTemplate(w, layoutName, p)
}
