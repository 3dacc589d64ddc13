package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/user"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// person identifies who triggered a log entry.
type person struct {
	id, name, email string
}

// entry is a log call split into what rollbar reports separately.
type entry struct {
	err    error
	person *person
	extras map[string]interface{}
	rest   []interface{}
}

// parseArgs accepts, in any order: error, map[string]interface{}, user.User, *user.User.
// Maps are merged into a single extras map. The first user wins; a map carrying
// "user_id" stands in for a user when none is given.
func parseArgs(args []interface{}) entry {
	var e entry
	for _, arg := range args {
		switch v := arg.(type) {
		case user.User:
			e.setPerson(person{id: v.ID, name: v.FullName(), email: v.Email})
		case *user.User:
			if v != nil {
				e.setPerson(person{id: v.ID, name: v.FullName(), email: v.Email})
			}
		case map[string]interface{}:
			if e.extras == nil {
				e.extras = make(map[string]interface{}, len(v))
			}
			for k, val := range v {
				e.extras[k] = val
			}
		case error:
			if e.err == nil {
				e.err = v
			} else {
				e.rest = append(e.rest, v)
			}
		case nil:
		default:
			e.rest = append(e.rest, v)
		}
	}
	if e.person == nil && e.extras != nil {
		if id, ok := e.extras["user_id"].(string); ok && id != "" {
			email, _ := e.extras["email"].(string)
			e.person = &person{id: id, email: email}
		}
	}
	return e
}

func (e *entry) setPerson(p person) {
	if e.person == nil {
		e.person = &p
	}
}

// rollbarArgs builds the arguments of rollbar.Log, which drops the message when
// an error is given and rejects types it does not know.
func (e entry) rollbarArgs(msg string, skip int) []interface{} {
	extras := make(map[string]interface{}, len(e.extras)+2)
	for k, v := range e.extras {
		extras[k] = v
	}
	if len(e.rest) > 0 {
		extras["args"] = fmt.Sprint(e.rest...)
	}
	args := []interface{}{skip}
	if e.err != nil {
		extras["message"] = msg
		args = append(args, e.err)
	} else {
		args = append(args, msg)
	}
	if len(extras) > 0 {
		args = append(args, extras)
	}
	return args
}

// line renders the entry for the std logger, extras sorted by key.
func (e entry) line(msg string) string {
	var b strings.Builder
	if e.person != nil && e.person.email != "" {
		fmt.Fprintf(&b, "[%s] ", e.person.email)
	}
	b.WriteString(msg)
	keys := make([]string, 0, len(e.extras))
	for k := range e.extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.extras[k])
	}
	return b.String()
}

func (l RollbarLogger) log(level, msg string, args []interface{}) {
	e := parseArgs(args)
	if e.person != nil {
		rollbar.SetPerson(e.person.id, e.person.name, e.person.email)
	} else {
		rollbar.ClearPerson()
	}
	// skip log and the level method
	rollbar.Log(level, e.rollbarArgs(msg, 4)...)

	l.std.Println(e.line(msg))
	if e.err != nil {
		l.std.Printf("%+v\n", e.err)
	}
	for _, arg := range e.rest {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(rollbar.DEBUG, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(rollbar.INFO, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(rollbar.WARN, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(rollbar.ERR, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	l.std.Fatal(msg)
}
