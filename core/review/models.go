package review

import (
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/thesis"
)

// DeadlineDays is the time reviewers get once a thesis is finished.
const DeadlineDays = 14

type Review struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	ThesisID     string    `json:"thesis_id"`
	File         string    `json:"file"`          // storage key, empty until uploaded
	FinishedDate time.Time `json:"finished_date"` // zero until uploaded
	CreatedAt    time.Time `json:"created_at"`    // UTC
}

// Finished reports whether the review document was uploaded.
func (r Review) Finished() bool {
	return r.File != ""
}

// Item is a Review along with the Thesis it is about.
type Item struct {
	Review
	Thesis thesis.Thesis
}

func (it Item) Deadline() time.Time {
	return Deadline(it.Thesis.FinishedDate)
}

// Deadline returns the date reviews of a thesis finished at finished are due:
// the finish date, time of day dropped, plus DeadlineDays.
// A zero finished time yields a zero deadline.
func Deadline(finished time.Time) time.Time {
	if finished.IsZero() {
		return time.Time{}
	}
	y, m, d := finished.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, finished.Location()).AddDate(0, 0, DeadlineDays)
}

// FileKey returns the storage key of a review document: reviews/<thesis id>/review<ext>.
func FileKey(thesisID, filename string) string {
	ext := path.Ext(thesis.CleanFilename(filename))
	return path.Join("reviews", thesisID, "review"+ext)
}

// UploadReview is the form a reviewer submits along with the review document.
type UploadReview struct {
	ReviewID string    `json:"review_hidden_id" validate:"required"`
	Filename string    `json:"review_file" validate:"required"`
	Content  io.Reader `json:"-"`
}

func (ur *UploadReview) Validate(validate *validator.Validate) error {
	ur.ReviewID = core.CleanString(ur.ReviewID)
	ur.Filename = thesis.CleanFilename(ur.Filename)
	return validate.Struct(ur)
}

// QueryFilter applies AND operation on its set fields.
type QueryFilter struct {
	AuthorID       string
	ThesisID       string
	OnlyUnfinished bool
}

func isDuplicate(reviews []Review, authorID string) bool {
	for _, r := range reviews {
		if strings.EqualFold(r.AuthorID, authorID) {
			return true
		}
	}
	return false
}
