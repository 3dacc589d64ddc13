package review

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/thesis"
	"github.com/olety/Diplomatool/core/user"
)

const dateLayout = "2006-01-02"

var ErrNotFound = core.NewNotFoundError("review")

type (
	Repository interface {
		CreateReview(ctx context.Context, r Review) (Review, error)
		GetReview(ctx context.Context, id string) (Review, error)
		QueryReviews(ctx context.Context, filter QueryFilter) ([]Review, error)
		UpdateReview(ctx context.Context, r Review) (Review, error)
	}

	Service struct {
		repo      Repository
		thesisSvc *thesis.Service
		usrSvc    *user.Service
		storage   core.FileStorage
		mailSvc   core.EmailService
		logger    core.Logger
	}
)

func NewService(
	repo Repository,
	thesisSvc *thesis.Service,
	usrSvc *user.Service,
	storage core.FileStorage,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:      repo,
		thesisSvc: thesisSvc,
		usrSvc:    usrSvc,
		storage:   storage,
		mailSvc:   mailSvc,
		logger:    logger,
	}
}

func (svc *Service) GetByID(ctx context.Context, id string) (Review, error) {
	if !core.IsValidID(id) {
		return Review{}, ErrNotFound
	}
	return svc.repo.GetReview(ctx, id)
}

// QueryByAuthor lists the reviews written by authorID along with their thesis.
func (svc *Service) QueryByAuthor(ctx context.Context, authorID string, onlyUnfinished bool) ([]Item, error) {
	reviews, err := svc.repo.QueryReviews(ctx, QueryFilter{AuthorID: authorID, OnlyUnfinished: onlyUnfinished})
	if err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}

	theses := make(map[string]thesis.Thesis)
	items := make([]Item, 0, len(reviews))
	for _, r := range reviews {
		th, ok := theses[r.ThesisID]
		if !ok {
			if th, err = svc.thesisSvc.GetByID(ctx, r.ThesisID); err != nil {
				return nil, errors.Wrap(err, "getting thesis")
			}
			theses[r.ThesisID] = th
		}
		items = append(items, Item{Review: r, Thesis: th})
	}
	return items, nil
}

// Upload attaches the review document to the review and stamps it finished now.
// Whoever passes the reviewer gate may upload for any review.
func (svc *Service) Upload(ctx context.Context, uploader user.User, data UploadReview) (Review, error) {
	r, err := svc.GetByID(ctx, data.ReviewID)
	if err != nil {
		return Review{}, errors.Wrap(err, "getting review")
	}
	if r.AuthorID != uploader.ID {
		svc.logger.Warn(fmt.Sprintf("review %s uploaded by %s, authored by %s", r.ID, uploader.ID, r.AuthorID),
			uploader, map[string]interface{}{"review_id": r.ID, "thesis_id": r.ThesisID})
	}

	key, err := svc.storage.Save(ctx, FileKey(r.ThesisID, data.Filename), data.Content)
	if err != nil {
		return Review{}, errors.Wrap(err, "saving review file")
	}
	r.File = key
	r.FinishedDate = time.Now().UTC()
	if r, err = svc.repo.UpdateReview(ctx, r); err != nil {
		return Review{}, errors.Wrap(err, "updating review")
	}

	svc.notifySubmitted(ctx, uploader, r)
	return r, nil
}

func (svc *Service) notifySubmitted(ctx context.Context, uploader user.User, r Review) {
	th, err := svc.thesisSvc.GetByID(ctx, r.ThesisID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("getting thesis %s: %v", r.ThesisID, err), err)
		return
	}
	users, err := svc.usrSvc.QueryByIDs(ctx, th.StudentID, th.SupervisorID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("getting thesis %s users: %v", th.ID, err), err)
		return
	}

	to := make([]mail.Address, 0, len(users))
	for _, id := range []string{th.StudentID, th.SupervisorID} {
		if usr, ok := users[id]; ok {
			to = append(to, mail.Address{Name: usr.FullName(), Address: usr.Email})
		}
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           to,
		Subject:      "Review submitted",
		TemplateName: "review_submitted",
		TemplateData: map[string]interface{}{
			"Reviewer": uploader.FullName(),
			"Thesis":   th.Title,
			"Date":     r.FinishedDate.Format(dateLayout),
		},
	})
}

// Assign asks reviewerID to review a thesis: an empty review is created for them.
func (svc *Service) Assign(ctx context.Context, thesisID, reviewerID string) (Review, error) {
	th, err := svc.thesisSvc.GetByID(ctx, thesisID)
	if err != nil {
		return Review{}, errors.Wrap(err, "getting thesis")
	}
	reviewer, err := svc.usrSvc.GetByID(ctx, reviewerID)
	if err != nil {
		return Review{}, errors.Wrap(err, "getting reviewer")
	}
	if !reviewer.IsReviewer() {
		return Review{}, core.NewValidationError(nil, core.FieldError{Field: "reviewer", Error: "user is not a reviewer"})
	}

	existing, err := svc.repo.QueryReviews(ctx, QueryFilter{ThesisID: th.ID})
	if err != nil {
		return Review{}, errors.Wrap(err, "querying reviews")
	}
	if isDuplicate(existing, reviewer.ID) {
		return Review{}, core.NewValidationError(nil, core.FieldError{Field: "reviewer", Error: "reviewer already assigned"})
	}

	r, err := svc.repo.CreateReview(ctx, Review{
		ID:        core.NewID(),
		AuthorID:  reviewer.ID,
		ThesisID:  th.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Review{}, errors.Wrap(err, "creating review")
	}

	var deadline string
	if d := Deadline(th.FinishedDate); !d.IsZero() {
		deadline = d.Format(dateLayout)
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: reviewer.FullName(), Address: reviewer.Email}},
		Subject:      "New review request",
		TemplateName: "review_assigned",
		TemplateData: map[string]interface{}{
			"Reviewer": reviewer.ShortName(),
			"Thesis":   th.Title,
			"Deadline": deadline,
		},
	})
	return r, nil
}

// OpenFile returns the uploaded document of r.
func (svc *Service) OpenFile(ctx context.Context, r Review) (io.ReadCloser, error) {
	if !r.Finished() {
		return nil, ErrNotFound
	}
	return svc.storage.Open(ctx, r.File)
}
