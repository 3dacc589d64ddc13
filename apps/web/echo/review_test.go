package echoweb_test

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/url"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/user"
	emailsvc "github.com/olety/Diplomatool/services/email"
)

func TestReviewList(t *testing.T) {
	server, env := setup(t)
	ctx := context.Background()
	student := env.CreateUser(t, "student@uni.test", pwd, user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", pwd, user.GroupSupervisor)
	reviewer := env.CreateUser(t, "reviewer@uni.test", pwd, user.GroupReviewer)
	other := env.CreateUser(t, "other@uni.test", pwd, user.GroupReviewer)

	finishedAt := time.Date(2020, time.June, 3, 22, 45, 0, 0, time.UTC)
	done := env.CreateThesis(t, "Completed thesis", student, supervisor, finishedAt)
	pending := env.CreateThesis(t, "Pending thesis", student, supervisor, finishedAt)
	foreign := env.CreateThesis(t, "Foreign thesis", student, supervisor, time.Time{})

	r := env.CreateReview(t, reviewer, done)
	r.File = "reviews/" + done.ID + "/review.pdf"
	r.FinishedDate = time.Now().UTC()
	_, err := env.ReviewRepo.UpdateReview(ctx, r)
	require.Nil(t, err)
	env.CreateReview(t, reviewer, pending)
	env.CreateReview(t, other, foreign)

	tests := []httpTest{
		{
			name:     "all",
			method:   http.MethodGet,
			path:     "/reviews",
			usr:      &reviewer,
			wantCode: http.StatusOK,
			wantBody: []string{"Completed thesis", "Pending thesis", "2020-06-17"},
		},
		{
			name:     "only unfinished",
			method:   http.MethodPost,
			path:     "/reviews",
			usr:      &reviewer,
			body:     url.Values{"show_completed": {"False"}},
			wantCode: http.StatusOK,
			wantBody: []string{"Pending thesis"},
		},
		{
			name:     "show completed",
			method:   http.MethodPost,
			path:     "/reviews",
			usr:      &reviewer,
			body:     url.Values{"show_completed": {"True"}},
			wantCode: http.StatusOK,
			wantBody: []string{"Completed thesis", "Pending thesis"},
		},
		{
			name:     "unfinished thesis has no deadline",
			method:   http.MethodGet,
			path:     "/reviews",
			usr:      &other,
			wantCode: http.StatusOK,
			wantBody: []string{"Foreign thesis", "<td>-</td>"},
		},
	}
	runHTTPTests(t, server, env, tests)

	req, rec := newFormRequest(t, env, http.MethodPost, "/reviews", &reviewer, url.Values{"show_completed": {"False"}})
	server.ServeHTTP(rec, req)
	assert.NotContains(t, rec.Body.String(), "Completed thesis")
	assert.NotContains(t, rec.Body.String(), "Foreign thesis")
}

func TestUploadReview(t *testing.T) {
	server, env := setup(t)
	ctx := context.Background()
	student := env.CreateUser(t, "student@uni.test", pwd, user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", pwd, user.GroupSupervisor)
	reviewer := env.CreateUser(t, "reviewer@uni.test", pwd, user.GroupReviewer)
	th := env.CreateThesis(t, "Reviewed thesis", student, supervisor, time.Now().UTC())
	r := env.CreateReview(t, reviewer, th)

	t.Run("missing file", func(t *testing.T) {
		req, rec := newMultipartRequest(t, env, "/reviews", &reviewer, map[string]string{"review_hidden_id": r.ID}, "", "", "")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "File: this field is required")
	})

	t.Run("missing id", func(t *testing.T) {
		req, rec := newMultipartRequest(t, env, "/reviews", &reviewer, nil, "review_file", "my review.pdf", "content")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Review: this field is required")
	})

	t.Run("unknown review", func(t *testing.T) {
		fields := map[string]string{"review_hidden_id": core.NewID()}
		req, rec := newMultipartRequest(t, env, "/reviews", &reviewer, fields, "review_file", "my review.pdf", "content")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("student", func(t *testing.T) {
		fields := map[string]string{"review_hidden_id": r.ID}
		req, rec := newMultipartRequest(t, env, "/reviews", &student, fields, "review_file", "my review.pdf", "content")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	got, err := env.ReviewSvc.GetByID(ctx, r.ID)
	require.Nil(t, err)
	require.False(t, got.Finished())

	fields := map[string]string{"review_hidden_id": r.ID}
	req, rec := newMultipartRequest(t, env, "/reviews", &reviewer, fields, "review_file", "My Review.final.PDF", "%PDF-1.4 review")
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Your review was submitted")

	got, err = env.ReviewSvc.GetByID(ctx, r.ID)
	require.Nil(t, err)
	assert.True(t, got.Finished())
	assert.Equal(t, "review.PDF", path.Base(got.File))
	assert.Equal(t, "reviews/"+th.ID+"/review.PDF", got.File)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), got.FinishedDate.Format("2006-01-02"))

	f, err := env.Storage.Open(ctx, got.File)
	require.Nil(t, err)
	content, err := ioutil.ReadAll(f)
	require.Nil(t, err)
	require.Nil(t, f.Close())
	assert.Equal(t, "%PDF-1.4 review", string(content))

	// the student and the supervisor are notified
	msgs := emailsvc.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "review_submitted", msgs[0].TemplateName)
	assert.Len(t, msgs[0].To, 2)

	// the thesis is now reviewed, as many times as it is asked
	for i := 0; i < 3; i++ {
		reviewed, err := env.ThesisSvc.IsReviewed(ctx, th)
		require.Nil(t, err)
		assert.True(t, reviewed)
	}
}

func TestDownloadReview(t *testing.T) {
	server, env := setup(t)
	student := env.CreateUser(t, "student@uni.test", pwd, user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", pwd, user.GroupSupervisor)
	reviewer := env.CreateUser(t, "reviewer@uni.test", pwd, user.GroupReviewer)
	other := env.CreateUser(t, "other@uni.test", pwd, user.GroupReviewer)
	th := env.CreateThesis(t, "Reviewed thesis", student, supervisor, time.Now().UTC())
	r := env.CreateReview(t, reviewer, th)
	empty := env.CreateReview(t, other, th)

	fields := map[string]string{"review_hidden_id": r.ID}
	req, rec := newMultipartRequest(t, env, "/reviews", &reviewer, fields, "review_file", "notes.txt", "good work")
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []httpTest{
		{name: "author", method: http.MethodGet, path: "/reviews/" + r.ID + "/file", usr: &reviewer, wantCode: http.StatusOK, wantBody: []string{"good work"}},
		{name: "other reviewer", method: http.MethodGet, path: "/reviews/" + r.ID + "/file", usr: &other, wantCode: http.StatusNotFound},
		{name: "not uploaded", method: http.MethodGet, path: "/reviews/" + empty.ID + "/file", usr: &other, wantCode: http.StatusNotFound},
		{name: "unknown", method: http.MethodGet, path: "/reviews/" + core.NewID() + "/file", usr: &reviewer, wantCode: http.StatusNotFound},
		{name: "student", method: http.MethodGet, path: "/reviews/" + r.ID + "/file", usr: &student, wantCode: http.StatusFound, wantLocation: "/"},
	}
	runHTTPTests(t, server, env, tests)
}
