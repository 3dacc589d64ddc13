package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core/faculty"
)

type facultyRow struct {
	ID   string `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
}

type facultyRepository struct {
	db *sqlx.DB
}

var _ faculty.Repository = (*facultyRepository)(nil) // interface compliance check

func NewFacultyRepository(db *sqlx.DB) faculty.Repository {
	return &facultyRepository{db: db}
}

func (repo *facultyRepository) CreateFaculty(ctx context.Context, f faculty.Faculty) (faculty.Faculty, error) {
	q := `INSERT INTO faculty (id, code, name) VALUES (:id, :code, :name)`
	if _, err := repo.db.NamedExecContext(ctx, q, facultyRow(f)); err != nil {
		if isUniqueViolation(err) {
			return faculty.Faculty{}, faculty.ErrCodeExists
		}
		return faculty.Faculty{}, errors.Wrap(err, "inserting faculty")
	}
	return f, nil
}

func (repo *facultyRepository) GetFaculty(ctx context.Context, id string) (faculty.Faculty, error) {
	var row facultyRow
	if err := repo.db.GetContext(ctx, &row, `SELECT id, code, name FROM faculty WHERE id = $1`, id); err != nil {
		return faculty.Faculty{}, trapNoRowsErr(err, faculty.ErrNotFound, "getting faculty")
	}
	return faculty.Faculty(row), nil
}

func (repo *facultyRepository) QueryFaculties(ctx context.Context) ([]faculty.Faculty, error) {
	var rows []facultyRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT id, code, name FROM faculty ORDER BY code`); err != nil {
		return nil, errors.Wrap(err, "querying faculties")
	}
	faculties := make([]faculty.Faculty, 0, len(rows))
	for _, row := range rows {
		faculties = append(faculties, faculty.Faculty(row))
	}
	return faculties, nil
}
