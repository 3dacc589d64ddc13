package thesis_test

import (
	"context"
	"io/ioutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/thesis"
	"github.com/olety/Diplomatool/core/user"
	"github.com/olety/Diplomatool/tests"
)

func TestFileKey(t *testing.T) {
	assert.Equal(t, "theses/s1/final.pdf", thesis.FileKey("s1", "final.pdf"))
	assert.Equal(t, "theses/s1/final.pdf", thesis.FileKey("s1", `C:\docs\final.pdf`))
	assert.Equal(t, "theses/s1/passwd", thesis.FileKey("s1", "../../passwd"))
	assert.Equal(t, "", thesis.CleanFilename(" .. "))
}

func TestCreateFromTopic(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	student := env.CreateUser(t, "student@uni.test", "", user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", "", user.GroupSupervisor)

	open := env.CreateTopic(t, "Open", "", supervisor.ID, true)
	proposed := env.CreateTopic(t, "Proposed", student.ID, supervisor.ID, false)
	accepted := env.CreateTopic(t, "Accepted", student.ID, supervisor.ID, true)

	_, err := env.ThesisSvc.CreateFromTopic(ctx, open.ID)
	assert.IsType(t, &core.ValidationError{}, err)
	_, err = env.ThesisSvc.CreateFromTopic(ctx, proposed.ID)
	assert.IsType(t, &core.ValidationError{}, err)
	_, err = env.ThesisSvc.CreateFromTopic(ctx, core.NewID())
	assert.True(t, core.IsNotFound(err))

	th, err := env.ThesisSvc.CreateFromTopic(ctx, accepted.ID)
	require.Nil(t, err)
	assert.Equal(t, "Accepted", th.Title)
	assert.Equal(t, student.ID, th.StudentID)
	assert.Equal(t, supervisor.ID, th.SupervisorID)
	assert.False(t, th.Finished)
	assert.True(t, th.FinishedDate.IsZero())

	_, err = env.ThesisSvc.CreateFromTopic(ctx, accepted.ID)
	assert.IsType(t, &core.ValidationError{}, err)

	theses, err := env.ThesisSvc.QueryByStudent(ctx, student.ID)
	require.Nil(t, err)
	assert.Len(t, theses, 1)
}

func TestFinishDottedFilename(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	student := env.CreateUser(t, "student@uni.test", "", user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", "", user.GroupSupervisor)
	th := env.CreateThesis(t, "Thesis", student, supervisor, time.Time{})

	got, err := env.ThesisSvc.Finish(ctx, th.ID, "thesis..final.pdf", strings.NewReader("body"))
	require.Nil(t, err)
	assert.Equal(t, "theses/"+student.ID+"/thesis..final.pdf", got.File)

	rc, err := env.Storage.Open(ctx, got.File)
	require.Nil(t, err)
	defer rc.Close()
	content, err := ioutil.ReadAll(rc)
	require.Nil(t, err)
	assert.Equal(t, "body", string(content))
}

func TestFinish(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	student := env.CreateUser(t, "student@uni.test", "", user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", "", user.GroupSupervisor)
	th := env.CreateThesis(t, "Thesis", student, supervisor, time.Time{})

	_, err := env.ThesisSvc.Finish(ctx, th.ID, "..", strings.NewReader("x"))
	assert.IsType(t, &core.ValidationError{}, err)

	got, err := env.ThesisSvc.Finish(ctx, th.ID, "final.pdf", strings.NewReader("thesis body"))
	require.Nil(t, err)
	assert.True(t, got.Finished)
	assert.Equal(t, "theses/"+student.ID+"/final.pdf", got.File)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), got.FinishedDate.Format("2006-01-02"))

	rc, err := env.Storage.Open(ctx, got.File)
	require.Nil(t, err)
	defer rc.Close()
	content, err := ioutil.ReadAll(rc)
	require.Nil(t, err)
	assert.Equal(t, "thesis body", string(content))
}

func TestIsReviewed(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	student := env.CreateUser(t, "student@uni.test", "", user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", "", user.GroupSupervisor)
	reviewer := env.CreateUser(t, "reviewer@uni.test", "", user.GroupReviewer)
	th := env.CreateThesis(t, "Thesis", student, supervisor, time.Now().UTC())

	reviewed, err := env.ThesisSvc.IsReviewed(ctx, th)
	require.Nil(t, err)
	assert.False(t, reviewed)

	env.CreateReview(t, reviewer, th)
	reviewed, err = env.ThesisSvc.IsReviewed(ctx, th)
	require.Nil(t, err)
	assert.True(t, reviewed)
}

func TestDefenses(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	student := env.CreateUser(t, "student@uni.test", "", user.GroupStudent)
	supervisor := env.CreateUser(t, "supervisor@uni.test", "", user.GroupSupervisor)
	unfinished := env.CreateThesis(t, "Unfinished", student, supervisor, time.Time{})
	th := env.CreateThesis(t, "Thesis", student, supervisor, time.Now().UTC())
	first := time.Date(2021, time.June, 20, 10, 0, 0, 0, time.UTC)

	_, err := env.ThesisSvc.ScheduleDefense(ctx, unfinished.ID, first)
	assert.IsType(t, &core.ValidationError{}, err)
	_, err = env.ThesisSvc.ScheduleDefense(ctx, th.ID, time.Time{})
	assert.IsType(t, &core.ValidationError{}, err)

	d1, err := env.ThesisSvc.ScheduleDefense(ctx, th.ID, first)
	require.Nil(t, err)
	assert.False(t, d1.SecondDefense)
	assert.False(t, d1.Successful)

	d1, err = env.ThesisSvc.RecordDefenseResult(ctx, d1.ID, false)
	require.Nil(t, err)
	assert.False(t, d1.Successful)

	d2, err := env.ThesisSvc.ScheduleDefense(ctx, th.ID, first.AddDate(0, 1, 0))
	require.Nil(t, err)
	assert.True(t, d2.SecondDefense)

	d2, err = env.ThesisSvc.RecordDefenseResult(ctx, d2.ID, true)
	require.Nil(t, err)
	assert.True(t, d2.Successful)

	defenses, err := env.ThesisSvc.QueryDefenses(ctx, th.ID)
	require.Nil(t, err)
	require.Len(t, defenses, 2)
	assert.Equal(t, d1.ID, defenses[0].ID)
	assert.Equal(t, d2.ID, defenses[1].ID)

	_, err = env.ThesisSvc.RecordDefenseResult(ctx, "42", true)
	assert.True(t, core.IsNotFound(err))
}
