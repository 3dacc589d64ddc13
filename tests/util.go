// Package testutil wires the services on the in-memory store for tests.
package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/faculty"
	"github.com/olety/Diplomatool/core/review"
	"github.com/olety/Diplomatool/core/thesis"
	"github.com/olety/Diplomatool/core/topic"
	"github.com/olety/Diplomatool/core/user"
	emailsvc "github.com/olety/Diplomatool/services/email"
	logsvc "github.com/olety/Diplomatool/services/logger"
	inmemdb "github.com/olety/Diplomatool/storage/database/inmem"
	filestore "github.com/olety/Diplomatool/storage/files"
)

// Env holds the application services backed by an in-memory database,
// a console email mock and a temporary local file storage.
type Env struct {
	Conf       *core.Config
	Logger     core.Logger
	DB         *inmemdb.DB
	Storage    *filestore.LocalStorage
	Validate   *validator.Validate
	Translator ut.Translator

	UserRepo    user.Repository
	FacultyRepo faculty.Repository
	TopicRepo   topic.Repository
	ThesisRepo  thesis.Repository
	ReviewRepo  review.Repository

	UserSvc    *user.Service
	FacultySvc *faculty.Service
	TopicSvc   *topic.Service
	ThesisSvc  *thesis.Service
	ReviewSvc  *review.Service
}

func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "TEST : ", 0), core.NewTestConfig())
	logger.Enable(false)
	return logger
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	conf := core.NewTestConfig()
	conf.Storage.Root = t.TempDir()
	logger := NewLogger()

	storage, err := filestore.NewLocalStorage(conf.Storage.Root)
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()

	db := inmemdb.Open()
	env := &Env{
		Conf:        conf,
		Logger:      logger,
		DB:          db,
		Storage:     storage,
		Validate:    validate,
		Translator:  translator,
		UserRepo:    inmemdb.NewUserRepository(db),
		FacultyRepo: inmemdb.NewFacultyRepository(db),
		TopicRepo:   inmemdb.NewTopicRepository(db),
		ThesisRepo:  inmemdb.NewThesisRepository(db),
		ReviewRepo:  inmemdb.NewReviewRepository(db),
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	env.UserSvc = user.NewService(env.UserRepo, mailSvc, conf)
	env.FacultySvc = faculty.NewService(env.FacultyRepo)
	env.TopicSvc = topic.NewService(env.TopicRepo, env.UserSvc, mailSvc)
	env.ThesisSvc = thesis.NewService(env.ThesisRepo, env.TopicSvc, storage)
	env.ReviewSvc = review.NewService(env.ReviewRepo, env.ThesisSvc, env.UserSvc, storage, mailSvc, logger)
	return env
}

// CreateUser stores an active user with a name derived from the email.
func (env *Env) CreateUser(t *testing.T, email, pwd string, groups ...string) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		ID:        core.NewID(),
		Email:     email,
		FirstName: "First",
		LastName:  "Last",
		Degree:    "Bachelor",
		Groups:    groups,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := env.UserRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateTopic stores a topic; available topics are also checked.
func (env *Env) CreateTopic(t *testing.T, name, studentID, supervisorID string, available bool) topic.Topic {
	t.Helper()

	now := time.Now().UTC()
	tp, err := env.TopicRepo.CreateTopic(context.Background(), topic.Topic{
		ID:               core.NewID(),
		Name:             name,
		ShortDescription: name + " description",
		Level:            "Bachelor",
		StudentID:        studentID,
		SupervisorID:     supervisorID,
		Checked:          available,
		Available:        available,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		t.Fatalf("CreateTopic() failed: %v", err)
	}
	return tp
}

// CreateThesis stores a thesis on a new topic, finished at finishedDate unless it is zero.
func (env *Env) CreateThesis(t *testing.T, title string, student, supervisor user.User, finishedDate time.Time) thesis.Thesis {
	t.Helper()

	tp := env.CreateTopic(t, title, student.ID, supervisor.ID, true)
	th, err := env.ThesisRepo.CreateThesis(context.Background(), thesis.Thesis{
		ID:               core.NewID(),
		StudentID:        student.ID,
		SupervisorID:     supervisor.ID,
		TopicID:          tp.ID,
		ShortDescription: tp.ShortDescription,
		Finished:         !finishedDate.IsZero(),
		FinishedDate:     finishedDate,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateThesis() failed: %v", err)
	}
	return th
}

// CreateReview stores an empty review of th by author.
func (env *Env) CreateReview(t *testing.T, author user.User, th thesis.Thesis) review.Review {
	t.Helper()

	r, err := env.ReviewRepo.CreateReview(context.Background(), review.Review{
		ID:        core.NewID(),
		AuthorID:  author.ID,
		ThesisID:  th.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateReview() failed: %v", err)
	}
	return r
}
