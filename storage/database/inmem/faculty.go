package inmemdb

import (
	"context"
	"sort"

	"github.com/olety/Diplomatool/core/faculty"
)

type facultyRepository struct {
	db *DB
}

var _ faculty.Repository = (*facultyRepository)(nil) // interface compliance check

func NewFacultyRepository(db *DB) faculty.Repository {
	return &facultyRepository{db: db}
}

func (repo *facultyRepository) CreateFaculty(_ context.Context, f faculty.Faculty) (faculty.Faculty, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.faculties {
		if existing.Code == f.Code {
			return faculty.Faculty{}, faculty.ErrCodeExists
		}
	}
	repo.db.faculties[f.ID] = f
	return f, nil
}

func (repo *facultyRepository) GetFaculty(_ context.Context, id string) (faculty.Faculty, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if f, ok := repo.db.faculties[id]; ok {
		return f, nil
	}
	return faculty.Faculty{}, faculty.ErrNotFound
}

func (repo *facultyRepository) QueryFaculties(_ context.Context) ([]faculty.Faculty, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	faculties := make([]faculty.Faculty, 0, len(repo.db.faculties))
	for _, f := range repo.db.faculties {
		faculties = append(faculties, f)
	}
	sort.Slice(faculties, func(i, j int) bool { return faculties[i].Code < faculties[j].Code })
	return faculties, nil
}
