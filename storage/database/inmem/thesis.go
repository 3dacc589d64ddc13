package inmemdb

import (
	"context"
	"sort"

	"github.com/olety/Diplomatool/core/thesis"
)

type thesisRepository struct {
	db *DB
}

var _ thesis.Repository = (*thesisRepository)(nil) // interface compliance check

func NewThesisRepository(db *DB) thesis.Repository {
	return &thesisRepository{db: db}
}

// withTitle fills the read only title from the topic table. The lock must be held.
func (repo *thesisRepository) withTitle(th thesis.Thesis) thesis.Thesis {
	if t, ok := repo.db.topics[th.TopicID]; ok {
		th.Title = t.Name
	}
	return th
}

func (repo *thesisRepository) CreateThesis(_ context.Context, th thesis.Thesis) (thesis.Thesis, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	th.Title = ""
	repo.db.theses[th.ID] = th
	return repo.withTitle(th), nil
}

func (repo *thesisRepository) GetThesis(_ context.Context, id string) (thesis.Thesis, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if th, ok := repo.db.theses[id]; ok {
		return repo.withTitle(th), nil
	}
	return thesis.Thesis{}, thesis.ErrNotFound
}

func (repo *thesisRepository) QueryTheses(_ context.Context, filter thesis.QueryFilter) ([]thesis.Thesis, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	theses := make([]thesis.Thesis, 0)
	for _, th := range repo.db.theses {
		if filter.StudentID != "" && th.StudentID != filter.StudentID {
			continue
		}
		if filter.SupervisorID != "" && th.SupervisorID != filter.SupervisorID {
			continue
		}
		if filter.TopicID != "" && th.TopicID != filter.TopicID {
			continue
		}
		theses = append(theses, repo.withTitle(th))
	}
	sort.Slice(theses, func(i, j int) bool {
		if !theses[i].CreatedAt.Equal(theses[j].CreatedAt) {
			return theses[i].CreatedAt.Before(theses[j].CreatedAt)
		}
		return theses[i].ID < theses[j].ID
	})
	return theses, nil
}

func (repo *thesisRepository) UpdateThesis(_ context.Context, th thesis.Thesis) (thesis.Thesis, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.theses[th.ID]; !ok {
		return thesis.Thesis{}, thesis.ErrNotFound
	}
	th.Title = ""
	repo.db.theses[th.ID] = th
	return repo.withTitle(th), nil
}

func (repo *thesisRepository) ThesisHasReviews(_ context.Context, id string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, r := range repo.db.reviews {
		if r.ThesisID == id {
			return true, nil
		}
	}
	return false, nil
}

func (repo *thesisRepository) CreateDefense(_ context.Context, d thesis.Defense) (thesis.Defense, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.defenses[d.ID] = d
	return d, nil
}

func (repo *thesisRepository) GetDefense(_ context.Context, id string) (thesis.Defense, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if d, ok := repo.db.defenses[id]; ok {
		return d, nil
	}
	return thesis.Defense{}, thesis.ErrDefenseNotFound
}

func (repo *thesisRepository) QueryDefenses(_ context.Context, thesisID string) ([]thesis.Defense, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	defenses := make([]thesis.Defense, 0)
	for _, d := range repo.db.defenses {
		if d.ThesisID == thesisID {
			defenses = append(defenses, d)
		}
	}
	sort.Slice(defenses, func(i, j int) bool { return defenses[i].Date.Before(defenses[j].Date) })
	return defenses, nil
}

func (repo *thesisRepository) UpdateDefense(_ context.Context, d thesis.Defense) (thesis.Defense, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.defenses[d.ID]; !ok {
		return thesis.Defense{}, thesis.ErrDefenseNotFound
	}
	repo.db.defenses[d.ID] = d
	return d, nil
}
