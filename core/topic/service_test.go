package topic_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/topic"
	"github.com/olety/Diplomatool/core/user"
	emailsvc "github.com/olety/Diplomatool/services/email"
	"github.com/olety/Diplomatool/tests"
)

func TestState(t *testing.T) {
	tests := []struct {
		topic topic.Topic
		want  string
	}{
		{topic: topic.Topic{}, want: topic.StateProposed},
		{topic: topic.Topic{Checked: true}, want: topic.StateChecked},
		{topic: topic.Topic{Checked: true, Available: true}, want: topic.StateAvailable},
		{topic: topic.Topic{Checked: true, Available: true, VotedFor: true}, want: topic.StateVotedFor},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.topic.State())
		})
	}
}

func TestPropose(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	student := env.CreateUser(t, "student@uni.test", "", user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", "", user.GroupSupervisor)
	reviewer := env.CreateUser(t, "reviewer@uni.test", "", user.GroupReviewer)
	open := env.CreateTopic(t, "Open topic", "", supervisor.ID, true)

	tests := []struct {
		name       string
		data       topic.ProposeTopic
		wantErr    bool
		wantNotFnd bool
	}{
		{name: "unknown supervisor", data: topic.ProposeTopic{Name: "n", Description: "d", Supervisor: core.NewID()}, wantErr: true, wantNotFnd: true},
		{name: "invalid id", data: topic.ProposeTopic{Name: "n", Description: "d", Supervisor: "42"}, wantErr: true, wantNotFnd: true},
		{name: "not a supervisor", data: topic.ProposeTopic{Name: "n", Description: "d", Supervisor: reviewer.ID}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.TopicSvc.Propose(ctx, student, tt.data)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.wantNotFnd, core.IsNotFound(err))
		})
	}
	assert.Len(t, emailsvc.SentMessages(), 0)

	data := topic.ProposeTopic{Name: "Graph colouring", Description: "Greedy heuristics", Supervisor: supervisor.ID}
	tp, err := env.TopicSvc.Propose(ctx, student, data)
	require.Nil(t, err)
	assert.Equal(t, "Graph colouring", tp.Name)
	assert.Equal(t, "Greedy heuristics", tp.ShortDescription)
	assert.Equal(t, student.Degree, tp.Level)
	assert.Equal(t, student.ID, tp.StudentID)
	assert.Equal(t, supervisor.ID, tp.SupervisorID)
	assert.Equal(t, topic.StateProposed, tp.State())

	available, err := env.TopicSvc.QueryAvailable(ctx)
	require.Nil(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)

	own, err := env.TopicSvc.QueryByStudent(ctx, student.ID)
	require.Nil(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, tp.ID, own[0].ID)

	msgs := emailsvc.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, supervisor.Email, msgs[0].To[0].Address)
	assert.Contains(t, msgs[0].TextContent, "Graph colouring")
}

func TestCreate(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	student := env.CreateUser(t, "student@uni.test", "", user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", "", user.GroupSupervisor)

	_, err := env.TopicSvc.Create(ctx, topic.NewTopic{Name: "n", SupervisorID: student.ID})
	assert.IsType(t, &core.ValidationError{}, err)

	_, err = env.TopicSvc.Create(ctx, topic.NewTopic{Name: "n", SupervisorID: supervisor.ID, StudentID: core.NewID()})
	assert.True(t, core.IsNotFound(err))

	tp, err := env.TopicSvc.Create(ctx, topic.NewTopic{Name: "n", Level: "Master", SupervisorID: supervisor.ID})
	require.Nil(t, err)
	assert.Equal(t, "", tp.StudentID)
	assert.Equal(t, "Master", tp.Level)
	assert.Equal(t, topic.StateProposed, tp.State())
}

func TestTransitions(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	supervisor := env.CreateUser(t, "supervisor@uni.test", "", user.GroupSupervisor)
	tp := env.CreateTopic(t, "Topic", "", supervisor.ID, false)

	_, err := env.TopicSvc.Publish(ctx, tp.ID)
	assert.Equal(t, topic.ErrInvalidTransition, errors.Cause(err))
	_, err = env.TopicSvc.VoteFor(ctx, tp.ID)
	assert.Equal(t, topic.ErrInvalidTransition, errors.Cause(err))

	tp, err = env.TopicSvc.Check(ctx, tp.ID)
	require.Nil(t, err)
	assert.Equal(t, topic.StateChecked, tp.State())

	_, err = env.TopicSvc.Check(ctx, tp.ID)
	assert.Equal(t, topic.ErrInvalidTransition, errors.Cause(err))

	tp, err = env.TopicSvc.Publish(ctx, tp.ID)
	require.Nil(t, err)
	assert.Equal(t, topic.StateAvailable, tp.State())

	tp, err = env.TopicSvc.VoteFor(ctx, tp.ID)
	require.Nil(t, err)
	assert.Equal(t, topic.StateVotedFor, tp.State())
	assert.True(t, tp.Available)

	_, err = env.TopicSvc.Check(ctx, core.NewID())
	assert.True(t, core.IsNotFound(err))
}
