package echoweb_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/olety/Diplomatool/apps/web/echo"
	"github.com/olety/Diplomatool/core/user"
	"github.com/olety/Diplomatool/tests"
)

const pwd = "Passw0rd!"

type httpTest struct {
	name         string
	method       string
	path         string
	body         url.Values
	usr          *user.User
	wantCode     int
	wantLocation string
	wantBody     []string
}

func setup(t *testing.T) (*Server, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t)
	server, err := NewServer(ServerDeps{
		Conf:       env.Conf,
		Logger:     env.Logger,
		UserSvc:    env.UserSvc,
		FacultySvc: env.FacultySvc,
		TopicSvc:   env.TopicSvc,
		ThesisSvc:  env.ThesisSvc,
		ReviewSvc:  env.ReviewSvc,
		Validate:   env.Validate,
		Translator: env.Translator,
	})
	require.Nil(t, err)
	return server, env
}

func sessionCookie(t *testing.T, env *testutil.Env, usr user.User) *http.Cookie {
	t.Helper()
	token, err := GenerateToken(env.Conf, GetUserClaims(env.Conf, usr))
	require.Nil(t, err)
	return &http.Cookie{Name: env.Conf.Server.SessionCookie, Value: token}
}

func newRequest(t *testing.T, env *testutil.Env, method, path string, usr *user.User, body io.Reader, contentType string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if usr != nil {
		req.AddCookie(sessionCookie(t, env, *usr))
	}
	return req, httptest.NewRecorder()
}

func newFormRequest(t *testing.T, env *testutil.Env, method, path string, usr *user.User, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	if form == nil {
		return newRequest(t, env, method, path, usr, nil, "")
	}
	return newRequest(t, env, method, path, usr, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// newMultipartRequest posts fields along with a file under fileField, when filename is set.
func newMultipartRequest(t *testing.T, env *testutil.Env, path string, usr *user.User, fields map[string]string, fileField, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.Nil(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile(fileField, filename)
		require.Nil(t, err)
		_, err = io.WriteString(fw, content)
		require.Nil(t, err)
	}
	require.Nil(t, w.Close())
	return newRequest(t, env, http.MethodPost, path, usr, &body, w.FormDataContentType())
}

func runHTTPTests(t *testing.T, server *Server, env *testutil.Env, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newFormRequest(t, env, tt.method, tt.path, tt.usr, tt.body)
			server.ServeHTTP(rec, req)
			checkResponse(t, tt, rec)
		})
	}
}

func checkResponse(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String()) && tt.wantLocation != "" {
		assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
	}
	for _, want := range tt.wantBody {
		assert.Contains(t, rec.Body.String(), want)
	}
}
