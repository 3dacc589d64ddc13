package echoweb_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olety/Diplomatool/core/user"
	emailsvc "github.com/olety/Diplomatool/services/email"
)

func TestAccessGate(t *testing.T) {
	server, env := setup(t)
	student := env.CreateUser(t, "student@uni.test", pwd, user.GroupStudent)
	reviewer := env.CreateUser(t, "reviewer@uni.test", pwd, user.GroupReviewer)
	supervisor := env.CreateUser(t, "supervisor@uni.test", pwd, user.GroupSupervisor)
	admin := env.CreateUser(t, "admin@uni.test", pwd)
	admin.IsAdmin = true
	admin, err := env.UserRepo.UpdateUser(context.Background(), admin)
	require.Nil(t, err)
	inactive := env.CreateUser(t, "inactive@uni.test", pwd, user.GroupStudent)
	inactive.IsActive = false
	inactive, err = env.UserRepo.UpdateUser(context.Background(), inactive)
	require.Nil(t, err)

	tests := []httpTest{
		{name: "profile anonymous", method: http.MethodGet, path: "/", wantCode: http.StatusFound, wantLocation: "/login"},
		{name: "topics anonymous", method: http.MethodGet, path: "/topic_list", wantCode: http.StatusFound, wantLocation: "/login?next=%2Ftopic_list"},
		{name: "reviews anonymous", method: http.MethodGet, path: "/reviews", wantCode: http.StatusFound, wantLocation: "/login?next=%2Freviews"},
		{name: "profile student", method: http.MethodGet, path: "/", usr: &student, wantCode: http.StatusOK, wantBody: []string{"student@uni.test"}},
		{name: "profile supervisor", method: http.MethodGet, path: "/", usr: &supervisor, wantCode: http.StatusOK},
		{name: "topics student", method: http.MethodGet, path: "/topic_list", usr: &student, wantCode: http.StatusOK},
		{name: "topics reviewer", method: http.MethodGet, path: "/topic_list", usr: &reviewer, wantCode: http.StatusFound, wantLocation: "/"},
		{name: "topics supervisor", method: http.MethodGet, path: "/topic_list", usr: &supervisor, wantCode: http.StatusFound, wantLocation: "/"},
		{name: "topics admin", method: http.MethodGet, path: "/topic_list", usr: &admin, wantCode: http.StatusOK},
		{name: "reviews reviewer", method: http.MethodGet, path: "/reviews", usr: &reviewer, wantCode: http.StatusOK},
		{name: "reviews student", method: http.MethodGet, path: "/reviews", usr: &student, wantCode: http.StatusFound, wantLocation: "/"},
		{name: "reviews admin", method: http.MethodGet, path: "/reviews", usr: &admin, wantCode: http.StatusOK},
		{name: "inactive user", method: http.MethodGet, path: "/topic_list", usr: &inactive, wantCode: http.StatusFound, wantLocation: "/login?next=%2Ftopic_list"},
	}
	runHTTPTests(t, server, env, tests)

	t.Run("invalid token", func(t *testing.T) {
		req, rec := newFormRequest(t, env, http.MethodGet, "/reviews", nil, nil)
		req.AddCookie(&http.Cookie{Name: env.Conf.Server.SessionCookie, Value: "not-a-jwt"})
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login?next=%2Freviews", rec.Header().Get("Location"))
	})
}

func TestLogin(t *testing.T) {
	server, env := setup(t)
	student := env.CreateUser(t, "student@uni.test", pwd, user.GroupStudent)

	tests := []httpTest{
		{name: "form", method: http.MethodGet, path: "/login?next=/reviews", wantCode: http.StatusOK, wantBody: []string{`value="/reviews"`}},
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/login",
			body:     url.Values{},
			wantCode: http.StatusBadRequest,
			wantBody: []string{"this field is required"},
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/login",
			body:     url.Values{"email": {student.Email}, "password": {"wrong"}},
			wantCode: http.StatusBadRequest,
			wantBody: []string{"please enter a correct email and password"},
		},
		{
			name:     "unknown email",
			method:   http.MethodPost,
			path:     "/login",
			body:     url.Values{"email": {"nobody@uni.test"}, "password": {pwd}},
			wantCode: http.StatusBadRequest,
			wantBody: []string{"please enter a correct email and password"},
		},
		{
			name:         "success",
			method:       http.MethodPost,
			path:         "/login",
			body:         url.Values{"email": {"Student@Uni.Test "}, "password": {pwd}, "next": {"/topic_list"}},
			wantCode:     http.StatusFound,
			wantLocation: "/topic_list",
		},
		{
			name:         "external next",
			method:       http.MethodPost,
			path:         "/login",
			body:         url.Values{"email": {student.Email}, "password": {pwd}, "next": {"//evil.test/"}},
			wantCode:     http.StatusFound,
			wantLocation: "/",
		},
	}
	runHTTPTests(t, server, env, tests)

	t.Run("session cookie", func(t *testing.T) {
		req, rec := newFormRequest(t, env, http.MethodPost, "/login", nil, url.Values{"email": {student.Email}, "password": {pwd}})
		server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusFound, rec.Code)

		var session *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == env.Conf.Server.SessionCookie {
				session = c
			}
		}
		require.NotNil(t, session)
		assert.True(t, session.HttpOnly)

		req, rec = newFormRequest(t, env, http.MethodGet, "/topic_list", nil, nil)
		req.AddCookie(session)
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		usr, err := env.UserSvc.GetByID(context.Background(), student.ID)
		require.Nil(t, err)
		assert.False(t, usr.LastLogin.IsZero())
	})

	t.Run("logout", func(t *testing.T) {
		req, rec := newFormRequest(t, env, http.MethodPost, "/logout", &student, url.Values{})
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "", cookies[0].Value)
		assert.True(t, cookies[0].MaxAge < 0)
	})
}

func TestPasswordReset(t *testing.T) {
	server, env := setup(t)
	student := env.CreateUser(t, "student@uni.test", pwd, user.GroupStudent)

	tests := []httpTest{
		{name: "form", method: http.MethodGet, path: "/password-reset", wantCode: http.StatusOK},
		{name: "invalid email", method: http.MethodPost, path: "/password-reset", body: url.Values{"email": {"nope"}}, wantCode: http.StatusBadRequest},
		{name: "unknown email", method: http.MethodPost, path: "/password-reset", body: url.Values{"email": {"nobody@uni.test"}}, wantCode: http.StatusOK, wantBody: []string{"an email will arrive"}},
	}
	runHTTPTests(t, server, env, tests)
	assert.Len(t, emailsvc.SentMessages(), 0)

	req, rec := newFormRequest(t, env, http.MethodPost, "/password-reset", nil, url.Values{"email": {student.Email}})
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	msgs := emailsvc.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "password_reset", msgs[0].TemplateName)
	data := msgs[0].TemplateData.(map[string]interface{})
	confirmPath := "/password-reset-confirm/" + data["UID"].(string) + "/" + data["Token"].(string)

	newPwd := "N3w-Secret!"
	tests = []httpTest{
		{name: "confirm form", method: http.MethodGet, path: confirmPath, wantCode: http.StatusOK},
		{
			name:     "bad token",
			method:   http.MethodPost,
			path:     "/password-reset-confirm/" + data["UID"].(string) + "/1-abc",
			body:     url.Values{"password": {newPwd}, "password_confirm": {newPwd}},
			wantCode: http.StatusBadRequest,
			wantBody: []string{"invalid or expired token"},
		},
		{
			name:     "mismatch",
			method:   http.MethodPost,
			path:     confirmPath,
			body:     url.Values{"password": {newPwd}, "password_confirm": {newPwd + "x"}},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "confirm",
			method:   http.MethodPost,
			path:     confirmPath,
			body:     url.Values{"password": {newPwd}, "password_confirm": {newPwd}},
			wantCode: http.StatusOK,
			wantBody: []string{"Your password has been set"},
		},
		{
			name:         "login with new password",
			method:       http.MethodPost,
			path:         "/login",
			body:         url.Values{"email": {student.Email}, "password": {newPwd}},
			wantCode:     http.StatusFound,
			wantLocation: "/",
		},
	}
	runHTTPTests(t, server, env, tests)
}
