package topic

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/user"
)

var (
	ErrNotFound          = core.NewNotFoundError("topic")
	ErrInvalidTransition = errors.New("invalid topic state transition")

	errInvalidSupervisor = "select a valid choice"
)

type (
	Repository interface {
		CreateTopic(ctx context.Context, t Topic) (Topic, error)
		GetTopic(ctx context.Context, id string) (Topic, error)
		QueryTopics(ctx context.Context, filter QueryFilter) ([]Topic, error)
		UpdateTopic(ctx context.Context, t Topic) (Topic, error)
	}

	Service struct {
		repo    Repository
		usrSvc  *user.Service
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, usrSvc *user.Service, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, usrSvc: usrSvc, mailSvc: mailSvc}
}

func (svc *Service) GetByID(ctx context.Context, id string) (Topic, error) {
	if !core.IsValidID(id) {
		return Topic{}, ErrNotFound
	}
	return svc.repo.GetTopic(ctx, id)
}

// QueryAvailable returns the topics students may pick.
func (svc *Service) QueryAvailable(ctx context.Context) ([]Topic, error) {
	available := true
	return svc.repo.QueryTopics(ctx, QueryFilter{Available: &available})
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Topic, error) {
	return svc.repo.QueryTopics(ctx, QueryFilter{StudentID: studentID})
}

func (svc *Service) QueryBySupervisor(ctx context.Context, supervisorID string) ([]Topic, error) {
	return svc.repo.QueryTopics(ctx, QueryFilter{SupervisorID: supervisorID})
}

// Propose records a topic suggested by student.
// The topic starts unchecked and unavailable, with the student's degree as its level.
// An unknown supervisor yields user.ErrNotFound.
func (svc *Service) Propose(ctx context.Context, student user.User, data ProposeTopic) (Topic, error) {
	supervisor, err := svc.usrSvc.GetByID(ctx, data.Supervisor)
	if err != nil {
		return Topic{}, errors.Wrap(err, "getting supervisor")
	}
	if !supervisor.IsSupervisor() || !supervisor.IsActive {
		return Topic{}, core.NewValidationError(nil, core.FieldError{Field: "supervisor", Error: errInvalidSupervisor})
	}

	now := time.Now().UTC()
	t, err := svc.repo.CreateTopic(ctx, Topic{
		ID:               core.NewID(),
		Name:             data.Name,
		ShortDescription: data.Description,
		Level:            student.Degree,
		StudentID:        student.ID,
		SupervisorID:     supervisor.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return Topic{}, errors.Wrap(err, "creating topic")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: supervisor.FullName(), Address: supervisor.Email}},
		Subject:      "New topic proposal",
		TemplateName: "topic_proposed",
		TemplateData: map[string]interface{}{
			"Supervisor":  supervisor.ShortName(),
			"Student":     student.FullName(),
			"Name":        t.Name,
			"Level":       t.Level,
			"Description": t.ShortDescription,
		},
	})
	return t, nil
}

// Create records a topic on behalf of staff.
func (svc *Service) Create(ctx context.Context, data NewTopic) (Topic, error) {
	supervisor, err := svc.usrSvc.GetByID(ctx, data.SupervisorID)
	if err != nil {
		return Topic{}, errors.Wrap(err, "getting supervisor")
	}
	if !supervisor.IsSupervisor() {
		return Topic{}, core.NewValidationError(nil, core.FieldError{Field: "supervisor", Error: errInvalidSupervisor})
	}
	if data.StudentID != "" {
		if _, err = svc.usrSvc.GetByID(ctx, data.StudentID); err != nil {
			return Topic{}, errors.Wrap(err, "getting student")
		}
	}

	now := time.Now().UTC()
	return svc.repo.CreateTopic(ctx, Topic{
		ID:               core.NewID(),
		Name:             data.Name,
		ShortDescription: data.Description,
		Level:            data.Level,
		StudentID:        data.StudentID,
		SupervisorID:     supervisor.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
}

// Check marks a proposed topic as reviewed by staff.
func (svc *Service) Check(ctx context.Context, id string) (Topic, error) {
	return svc.transition(ctx, id, StateProposed, func(t *Topic) { t.Checked = true })
}

// Publish lists a checked topic for students.
func (svc *Service) Publish(ctx context.Context, id string) (Topic, error) {
	return svc.transition(ctx, id, StateChecked, func(t *Topic) { t.Available = true })
}

// VoteFor records that an available topic was voted for.
func (svc *Service) VoteFor(ctx context.Context, id string) (Topic, error) {
	return svc.transition(ctx, id, StateAvailable, func(t *Topic) { t.VotedFor = true })
}

func (svc *Service) transition(ctx context.Context, id, from string, apply func(t *Topic)) (Topic, error) {
	t, err := svc.GetByID(ctx, id)
	if err != nil {
		return Topic{}, errors.Wrap(err, "getting topic")
	}
	if t.State() != from {
		return Topic{}, errors.Wrapf(ErrInvalidTransition, "topic is %s, want %s", t.State(), from)
	}
	apply(&t)
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTopic(ctx, t)
}
