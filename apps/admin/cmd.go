package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/faculty"
	"github.com/olety/Diplomatool/core/review"
	"github.com/olety/Diplomatool/core/thesis"
	"github.com/olety/Diplomatool/core/topic"
	"github.com/olety/Diplomatool/core/user"
)

const dateTimeLayout = "2006-01-02T15:04"

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp             = errors.New("help provided")
	errPasswordMismatch = errors.New("passwords do not match")
)

type commandLine struct {
	db         *sql.DB // nil with the memory engine
	out        io.Writer
	validate   *validator.Validate
	translator ut.Translator

	usrSvc     *user.Service
	facultySvc *faculty.Service
	topicSvc   *topic.Service
	thesisSvc  *thesis.Service
	reviewSvc  *review.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run goose migrations (up, up-by-one, up-to V, down, down-to V, redo, reset, status, version, create NAME, fix)")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -first NAME -last NAME [-groups G1,G2] [-degree D] [-department D] [-faculty ID] [-admin] - add or update a user")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  addfaculty -code CODE -name NAME - add a faculty")
	fmt.Fprintln(cli.out, "  addtopic -name NAME -supervisor EMAIL [-description D] [-level L] [-student EMAIL] - add a topic")
	fmt.Fprintln(cli.out, "  topic -id ID -action check|publish|vote - move a topic to its next state")
	fmt.Fprintln(cli.out, "  createthesis -topic ID - open the thesis of an accepted topic")
	fmt.Fprintln(cli.out, "  finishthesis -id ID -file PATH - upload the final thesis document")
	fmt.Fprintln(cli.out, "  assignreview -thesis ID -reviewer EMAIL - ask a reviewer to review a thesis")
	fmt.Fprintln(cli.out, "  scheduledefense -thesis ID -date "+dateTimeLayout+" - plan a thesis defense")
	fmt.Fprintln(cli.out, "  defenseresult -id ID [-successful] - record the result of a defense")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		cmd := flag.NewFlagSet("adduser", flag.ExitOnError)
		email := cmd.String("email", "", "The user's email, used to log in.")
		first := cmd.String("first", "", "First name.")
		last := cmd.String("last", "", "Last name.")
		groups := cmd.String("groups", "", "Comma separated groups among "+strings.Join(user.AllGroups, ", ")+".")
		degree := cmd.String("degree", "", "Degree, e.g. Bachelor.")
		department := cmd.String("department", "", "Department code.")
		facultyID := cmd.String("faculty", "", "Faculty ID.")
		isAdmin := cmd.Bool("admin", false, "Grant access to every page.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(true /* confirm */)
		if err != nil {
			return err
		}
		if pwd == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.addUser(user.NewUser{
			Email:           *email,
			FirstName:       *first,
			LastName:        *last,
			Degree:          *degree,
			Department:      *department,
			FacultyID:       *facultyID,
			Groups:          splitList(*groups),
			IsAdmin:         *isAdmin,
			Password:        pwd,
			PasswordConfirm: pwd,
		})

	case "resetpassword":
		cmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
		email := cmd.String("email", "", "The user's email. The password will be prompted next.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(false /* confirm */)
		if err != nil {
			return err
		}
		if pwd == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*email, pwd)

	case "addfaculty":
		cmd := flag.NewFlagSet("addfaculty", flag.ExitOnError)
		code := cmd.String("code", "", "Short faculty code, e.g. W8.")
		name := cmd.String("name", "", "Faculty name.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *code == "" || *name == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.addFaculty(faculty.NewFaculty{Code: *code, Name: *name})

	case "addtopic":
		cmd := flag.NewFlagSet("addtopic", flag.ExitOnError)
		name := cmd.String("name", "", "Topic name.")
		description := cmd.String("description", "", "Short description.")
		level := cmd.String("level", "", "Degree level, e.g. Master.")
		supervisor := cmd.String("supervisor", "", "Supervisor email.")
		student := cmd.String("student", "", "Student email, when the topic is reserved.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *name == "" || *supervisor == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.addTopic(*name, *description, *level, *supervisor, *student)

	case "topic":
		cmd := flag.NewFlagSet("topic", flag.ExitOnError)
		id := cmd.String("id", "", "Topic ID.")
		action := cmd.String("action", "", "One of check, publish, vote.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *id == "" || *action == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.moveTopic(*id, *action)

	case "createthesis":
		cmd := flag.NewFlagSet("createthesis", flag.ExitOnError)
		topicID := cmd.String("topic", "", "Topic ID.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *topicID == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.createThesis(*topicID)

	case "finishthesis":
		cmd := flag.NewFlagSet("finishthesis", flag.ExitOnError)
		id := cmd.String("id", "", "Thesis ID.")
		file := cmd.String("file", "", "Path of the final document.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *id == "" || *file == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.finishThesis(*id, *file)

	case "assignreview":
		cmd := flag.NewFlagSet("assignreview", flag.ExitOnError)
		thesisID := cmd.String("thesis", "", "Thesis ID.")
		reviewer := cmd.String("reviewer", "", "Reviewer email.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *thesisID == "" || *reviewer == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.assignReview(*thesisID, *reviewer)

	case "scheduledefense":
		cmd := flag.NewFlagSet("scheduledefense", flag.ExitOnError)
		thesisID := cmd.String("thesis", "", "Thesis ID.")
		date := cmd.String("date", "", "Defense date, UTC, formatted as "+dateTimeLayout+".")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *thesisID == "" || *date == "" {
			cmd.Usage()
			return errHelp
		}
		when, err := time.Parse(dateTimeLayout, *date)
		if err != nil {
			return fmt.Errorf("invalid date %q, want %s", *date, dateTimeLayout)
		}
		return cli.scheduleDefense(*thesisID, when)

	case "defenseresult":
		cmd := flag.NewFlagSet("defenseresult", flag.ExitOnError)
		id := cmd.String("id", "", "Defense ID.")
		successful := cmd.Bool("successful", false, "Whether the student passed.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *id == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.recordDefenseResult(*id, *successful)

	default:
		cli.printUsage()
		return errHelp
	}
}

// promptPassword reads a password from the terminal, twice when confirm is set.
func (cli *commandLine) promptPassword(confirm bool) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil || len(pwd) == 0 || !confirm {
		return string(pwd), err
	}

	fmt.Fprint(cli.out, "Confirm password:")
	again, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if string(again) != string(pwd) {
		return "", errPasswordMismatch
	}
	return string(pwd), nil
}

// validationErr flattens field errors into a single readable error.
func (cli *commandLine) validationErr(err error) error {
	fields, ok := core.FieldErrors(err, cli.translator)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(fields))
	for field, msg := range fields {
		msgs = append(msgs, field+": "+msg)
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "; "))
}

func splitList(s string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
