package echoweb_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/user"
	emailsvc "github.com/olety/Diplomatool/services/email"
)

func TestTopicList(t *testing.T) {
	server, env := setup(t)
	student := env.CreateUser(t, "student@uni.test", pwd, user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", pwd, user.GroupSupervisor)
	env.CreateTopic(t, "Available topic", "", supervisor.ID, true)
	env.CreateTopic(t, "Hidden topic", "", supervisor.ID, false)

	req, rec := newFormRequest(t, env, http.MethodGet, "/topic_list", &student, nil)
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Available topic")
	assert.NotContains(t, rec.Body.String(), "Hidden topic")
	assert.Contains(t, rec.Body.String(), `<option value="`+supervisor.ID+`">`)
}

func TestProposeTopic(t *testing.T) {
	server, env := setup(t)
	ctx := context.Background()
	student := env.CreateUser(t, "student@uni.test", pwd, user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", pwd, user.GroupSupervisor)
	reviewer := env.CreateUser(t, "reviewer@uni.test", pwd, user.GroupReviewer)

	form := func(name, desc, supervisorID string) url.Values {
		return url.Values{"name": {name}, "description": {desc}, "supervisor": {supervisorID}}
	}

	tests := []httpTest{
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/topic_list",
			usr:      &student,
			body:     form("", "", ""),
			wantCode: http.StatusBadRequest,
			wantBody: []string{"this field is required"},
		},
		{
			name:     "not a supervisor",
			method:   http.MethodPost,
			path:     "/topic_list",
			usr:      &student,
			body:     form("Topic test name", "Short description", reviewer.ID),
			wantCode: http.StatusBadRequest,
			wantBody: []string{"select a valid choice", "Topic test name"},
		},
		{
			name:     "unknown supervisor",
			method:   http.MethodPost,
			path:     "/topic_list",
			usr:      &student,
			body:     form("Topic test name", "Short description", core.NewID()),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "malformed supervisor",
			method:   http.MethodPost,
			path:     "/topic_list",
			usr:      &student,
			body:     form("Topic test name", "Short description", "42"),
			wantCode: http.StatusNotFound,
		},
	}
	runHTTPTests(t, server, env, tests)

	topics, err := env.TopicSvc.QueryByStudent(ctx, student.ID)
	require.Nil(t, err)
	require.Len(t, topics, 0)
	assert.Len(t, emailsvc.SentMessages(), 0)

	req, rec := newFormRequest(t, env, http.MethodPost, "/topic_list", &student, form("Topic test name", "Short description", supervisor.ID))
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your proposals")
	assert.Contains(t, rec.Body.String(), "Topic test name (proposed)")

	topics, err = env.TopicSvc.QueryByStudent(ctx, student.ID)
	require.Nil(t, err)
	require.Len(t, topics, 1)
	tp := topics[0]
	assert.Equal(t, student.ID, tp.StudentID)
	assert.Equal(t, "Topic test name", tp.Name)
	assert.Equal(t, "Short description", tp.ShortDescription)
	assert.Equal(t, supervisor.ID, tp.SupervisorID)
	assert.Equal(t, "Bachelor", tp.Level)
	assert.False(t, tp.Available)
	assert.False(t, tp.Checked)
	assert.False(t, tp.VotedFor)

	available, err := env.TopicSvc.QueryAvailable(ctx)
	require.Nil(t, err)
	assert.Len(t, available, 0)

	msgs := emailsvc.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, supervisor.Email, msgs[0].To[0].Address)
	assert.Contains(t, msgs[0].TextContent, "Topic test name")
}
