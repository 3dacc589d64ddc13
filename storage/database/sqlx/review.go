package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/olety/Diplomatool/core/review"
)

const reviewColumns = `id, author_id, thesis_id, file, finished_date, created_at`

type reviewRow struct {
	ID           string    `db:"id"`
	AuthorID     string    `db:"author_id"`
	ThesisID     string    `db:"thesis_id"`
	File         string    `db:"file"`
	FinishedDate null.Time `db:"finished_date"`
	CreatedAt    time.Time `db:"created_at"`
}

func toReviewRow(r review.Review) reviewRow {
	return reviewRow{
		ID:           r.ID,
		AuthorID:     r.AuthorID,
		ThesisID:     r.ThesisID,
		File:         r.File,
		FinishedDate: null.NewTime(r.FinishedDate.UTC(), !r.FinishedDate.IsZero()),
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func (row reviewRow) toReview() review.Review {
	r := review.Review{
		ID:        row.ID,
		AuthorID:  row.AuthorID,
		ThesisID:  row.ThesisID,
		File:      row.File,
		CreatedAt: row.CreatedAt.UTC(),
	}
	if row.FinishedDate.Valid {
		r.FinishedDate = row.FinishedDate.Time.UTC()
	}
	return r
}

type reviewRepository struct {
	db *sqlx.DB
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *sqlx.DB) review.Repository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) CreateReview(ctx context.Context, r review.Review) (review.Review, error) {
	q := `INSERT INTO review (` + reviewColumns + `) VALUES (:id, :author_id, :thesis_id, :file, :finished_date, :created_at)`
	row := toReviewRow(r)
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return review.Review{}, errors.Wrap(err, "inserting review")
	}
	return row.toReview(), nil
}

func (repo *reviewRepository) GetReview(ctx context.Context, id string) (review.Review, error) {
	var row reviewRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+reviewColumns+` FROM review WHERE id = $1`, id); err != nil {
		return review.Review{}, trapNoRowsErr(err, review.ErrNotFound, "getting review")
	}
	return row.toReview(), nil
}

func (repo *reviewRepository) QueryReviews(ctx context.Context, filter review.QueryFilter) ([]review.Review, error) {
	var w whereClause
	if filter.AuthorID != "" {
		w.add("author_id = ?", filter.AuthorID)
	}
	if filter.ThesisID != "" {
		w.add("thesis_id = ?", filter.ThesisID)
	}
	q := `SELECT ` + reviewColumns + ` FROM review` + w.String()
	if filter.OnlyUnfinished {
		if len(w.conds) == 0 {
			q += ` WHERE file = ''`
		} else {
			q += ` AND file = ''`
		}
	}

	var rows []reviewRow
	if err := repo.db.SelectContext(ctx, &rows, q+` ORDER BY created_at, id`, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}
	reviews := make([]review.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, row.toReview())
	}
	return reviews, nil
}

func (repo *reviewRepository) UpdateReview(ctx context.Context, r review.Review) (review.Review, error) {
	q := `UPDATE review SET author_id = :author_id, thesis_id = :thesis_id, file = :file,
		finished_date = :finished_date
		WHERE id = :id`
	row := toReviewRow(r)
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return review.Review{}, errors.Wrap(err, "updating review")
	}
	if err = checkAffected(res, review.ErrNotFound, "updating review"); err != nil {
		return review.Review{}, err
	}
	return row.toReview(), nil
}
