package inmemdb

import (
	"context"
	"sort"

	"github.com/olety/Diplomatool/core/review"
)

type reviewRepository struct {
	db *DB
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) CreateReview(_ context.Context, r review.Review) (review.Review, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.reviews[r.ID] = r
	return r, nil
}

func (repo *reviewRepository) GetReview(_ context.Context, id string) (review.Review, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if r, ok := repo.db.reviews[id]; ok {
		return r, nil
	}
	return review.Review{}, review.ErrNotFound
}

func (repo *reviewRepository) QueryReviews(_ context.Context, filter review.QueryFilter) ([]review.Review, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	reviews := make([]review.Review, 0)
	for _, r := range repo.db.reviews {
		if filter.AuthorID != "" && r.AuthorID != filter.AuthorID {
			continue
		}
		if filter.ThesisID != "" && r.ThesisID != filter.ThesisID {
			continue
		}
		if filter.OnlyUnfinished && r.Finished() {
			continue
		}
		reviews = append(reviews, r)
	}
	sort.Slice(reviews, func(i, j int) bool {
		if !reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
		}
		return reviews[i].ID < reviews[j].ID
	})
	return reviews, nil
}

func (repo *reviewRepository) UpdateReview(_ context.Context, r review.Review) (review.Review, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.reviews[r.ID]; !ok {
		return review.Review{}, review.ErrNotFound
	}
	repo.db.reviews[r.ID] = r
	return r, nil
}
