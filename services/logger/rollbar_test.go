package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/user"
)

func TestParseArgs(t *testing.T) {
	usr := user.User{ID: "u1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@test.test"}
	other := &user.User{ID: "u2", Email: "other@test.test"}
	err := errors.New("boom")

	t.Run("user and merged maps", func(t *testing.T) {
		e := parseArgs([]interface{}{
			err,
			map[string]interface{}{"review_id": "r1"},
			usr,
			map[string]interface{}{"thesis_id": "t1"},
			other,
		})
		assert.Equal(t, err, e.err)
		require.NotNil(t, e.person)
		assert.Equal(t, "u1", e.person.id)
		assert.Equal(t, usr.FullName(), e.person.name)
		assert.Equal(t, map[string]interface{}{"review_id": "r1", "thesis_id": "t1"}, e.extras)
		assert.Empty(t, e.rest)
	})

	t.Run("user pointer", func(t *testing.T) {
		e := parseArgs([]interface{}{other})
		require.NotNil(t, e.person)
		assert.Equal(t, "other@test.test", e.person.email)
	})

	t.Run("person from request claims", func(t *testing.T) {
		e := parseArgs([]interface{}{map[string]interface{}{"user_id": "u3", "email": "c@test.test"}})
		require.NotNil(t, e.person)
		assert.Equal(t, "u3", e.person.id)
		assert.Equal(t, "c@test.test", e.person.email)
	})

	t.Run("extra values", func(t *testing.T) {
		second := errors.New("second")
		e := parseArgs([]interface{}{nil, err, second, 42})
		assert.Nil(t, e.person)
		assert.Equal(t, err, e.err)
		assert.Equal(t, []interface{}{second, 42}, e.rest)
	})
}

func TestRollbarArgs(t *testing.T) {
	e := parseArgs([]interface{}{errors.New("boom"), map[string]interface{}{"path": "/theses"}})
	args := e.rollbarArgs("request failed", 4)
	require.Len(t, args, 3)
	assert.Equal(t, 4, args[0])
	assert.Equal(t, e.err, args[1])
	assert.Equal(t, map[string]interface{}{"path": "/theses", "message": "request failed"}, args[2])
	// the entry's own extras are left untouched
	assert.Equal(t, map[string]interface{}{"path": "/theses"}, e.extras)

	args = parseArgs(nil).rollbarArgs("started", 4)
	assert.Equal(t, []interface{}{4, "started"}, args)
}

func TestRollbarLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), core.NewTestConfig())
	logger.Enable(false)

	usr := user.User{ID: "u1", Email: "ada@test.test"}
	logger.Warn("review uploaded by someone else", usr, map[string]interface{}{"thesis_id": "t1", "review_id": "r1"})

	assert.Equal(t, "[ada@test.test] review uploaded by someone else review_id=r1 thesis_id=t1\n", buf.String())
}
