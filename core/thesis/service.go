package thesis

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/topic"
)

var (
	ErrNotFound        = core.NewNotFoundError("thesis")
	ErrDefenseNotFound = core.NewNotFoundError("defense")
)

type (
	Repository interface {
		CreateThesis(ctx context.Context, th Thesis) (Thesis, error)
		GetThesis(ctx context.Context, id string) (Thesis, error)
		QueryTheses(ctx context.Context, filter QueryFilter) ([]Thesis, error)
		UpdateThesis(ctx context.Context, th Thesis) (Thesis, error)
		// ThesisHasReviews reports whether at least one review references the thesis.
		ThesisHasReviews(ctx context.Context, id string) (bool, error)

		CreateDefense(ctx context.Context, d Defense) (Defense, error)
		GetDefense(ctx context.Context, id string) (Defense, error)
		QueryDefenses(ctx context.Context, thesisID string) ([]Defense, error)
		UpdateDefense(ctx context.Context, d Defense) (Defense, error)
	}

	Service struct {
		repo     Repository
		topicSvc *topic.Service
		storage  core.FileStorage
	}
)

func NewService(repo Repository, topicSvc *topic.Service, storage core.FileStorage) *Service {
	return &Service{repo: repo, topicSvc: topicSvc, storage: storage}
}

func (svc *Service) GetByID(ctx context.Context, id string) (Thesis, error) {
	if !core.IsValidID(id) {
		return Thesis{}, ErrNotFound
	}
	return svc.repo.GetThesis(ctx, id)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Thesis, error) {
	return svc.repo.QueryTheses(ctx, QueryFilter{StudentID: studentID})
}

// IsReviewed reports whether th received at least one review.
func (svc *Service) IsReviewed(ctx context.Context, th Thesis) (bool, error) {
	return svc.repo.ThesisHasReviews(ctx, th.ID)
}

// CreateFromTopic opens the thesis of an accepted topic.
// The topic must have a student and be checked; a topic holds a single thesis.
func (svc *Service) CreateFromTopic(ctx context.Context, topicID string) (Thesis, error) {
	t, err := svc.topicSvc.GetByID(ctx, topicID)
	if err != nil {
		return Thesis{}, errors.Wrap(err, "getting topic")
	}
	if t.StudentID == "" {
		return Thesis{}, core.NewValidationError(nil, core.FieldError{Field: "topic", Error: "topic has no student"})
	}
	if t.State() == topic.StateProposed {
		return Thesis{}, core.NewValidationError(nil, core.FieldError{Field: "topic", Error: "topic has not been checked"})
	}
	existing, err := svc.repo.QueryTheses(ctx, QueryFilter{TopicID: t.ID})
	if err != nil {
		return Thesis{}, errors.Wrap(err, "querying theses")
	}
	if len(existing) > 0 {
		return Thesis{}, core.NewValidationError(nil, core.FieldError{Field: "topic", Error: "topic already has a thesis"})
	}

	return svc.repo.CreateThesis(ctx, Thesis{
		ID:               core.NewID(),
		StudentID:        t.StudentID,
		SupervisorID:     t.SupervisorID,
		TopicID:          t.ID,
		Title:            t.Name,
		ShortDescription: t.ShortDescription,
		CreatedAt:        time.Now().UTC(),
	})
}

// Finish stores the final thesis document and marks the thesis finished today.
func (svc *Service) Finish(ctx context.Context, id, filename string, r io.Reader) (Thesis, error) {
	th, err := svc.GetByID(ctx, id)
	if err != nil {
		return Thesis{}, errors.Wrap(err, "getting thesis")
	}
	if CleanFilename(filename) == "" {
		return Thesis{}, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "invalid file name"})
	}

	key, err := svc.storage.Save(ctx, FileKey(th.StudentID, filename), r)
	if err != nil {
		return Thesis{}, errors.Wrap(err, "saving thesis file")
	}
	th.File = key
	th.Finished = true
	th.FinishedDate = time.Now().UTC()
	return svc.repo.UpdateThesis(ctx, th)
}

func (svc *Service) QueryDefenses(ctx context.Context, thesisID string) ([]Defense, error) {
	return svc.repo.QueryDefenses(ctx, thesisID)
}

// ScheduleDefense plans the defense of a finished thesis.
func (svc *Service) ScheduleDefense(ctx context.Context, thesisID string, date time.Time) (Defense, error) {
	th, err := svc.GetByID(ctx, thesisID)
	if err != nil {
		return Defense{}, errors.Wrap(err, "getting thesis")
	}
	if !th.Finished {
		return Defense{}, core.NewValidationError(nil, core.FieldError{Field: "thesis", Error: "thesis is not finished"})
	}
	if date.IsZero() {
		return Defense{}, core.NewValidationError(nil, core.FieldError{Field: "date", Error: "this field is required"})
	}

	defenses, err := svc.repo.QueryDefenses(ctx, th.ID)
	if err != nil {
		return Defense{}, errors.Wrap(err, "querying defenses")
	}
	return svc.repo.CreateDefense(ctx, Defense{
		ID:            core.NewID(),
		ThesisID:      th.ID,
		Date:          date.UTC(),
		SecondDefense: len(defenses) > 0,
	})
}

func (svc *Service) RecordDefenseResult(ctx context.Context, id string, successful bool) (Defense, error) {
	if !core.IsValidID(id) {
		return Defense{}, ErrDefenseNotFound
	}
	d, err := svc.repo.GetDefense(ctx, id)
	if err != nil {
		return Defense{}, errors.Wrap(err, "getting defense")
	}
	d.Successful = successful
	return svc.repo.UpdateDefense(ctx, d)
}
