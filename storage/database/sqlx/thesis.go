package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/olety/Diplomatool/core/thesis"
)

const (
	thesisColumns = `id, student_id, supervisor_id, topic_id, short_description, file,
		finished, finished_date, created_at`
	thesisSelect = `SELECT th.id, th.student_id, th.supervisor_id, th.topic_id, th.short_description,
		th.file, th.finished, th.finished_date, th.created_at, tp.name AS title
		FROM thesis th JOIN topic tp ON tp.id = th.topic_id`

	defenseColumns = `id, thesis_id, date, successful, second_defense`
)

type thesisRow struct {
	ID               string    `db:"id"`
	StudentID        string    `db:"student_id"`
	SupervisorID     string    `db:"supervisor_id"`
	TopicID          string    `db:"topic_id"`
	Title            string    `db:"title"`
	ShortDescription string    `db:"short_description"`
	File             string    `db:"file"`
	Finished         bool      `db:"finished"`
	FinishedDate     null.Time `db:"finished_date"`
	CreatedAt        time.Time `db:"created_at"`
}

func toThesisRow(th thesis.Thesis) thesisRow {
	return thesisRow{
		ID:               th.ID,
		StudentID:        th.StudentID,
		SupervisorID:     th.SupervisorID,
		TopicID:          th.TopicID,
		Title:            th.Title,
		ShortDescription: th.ShortDescription,
		File:             th.File,
		Finished:         th.Finished,
		FinishedDate:     null.NewTime(th.FinishedDate.UTC(), !th.FinishedDate.IsZero()),
		CreatedAt:        th.CreatedAt.UTC(),
	}
}

func (row thesisRow) toThesis() thesis.Thesis {
	th := thesis.Thesis{
		ID:               row.ID,
		StudentID:        row.StudentID,
		SupervisorID:     row.SupervisorID,
		TopicID:          row.TopicID,
		Title:            row.Title,
		ShortDescription: row.ShortDescription,
		File:             row.File,
		Finished:         row.Finished,
		CreatedAt:        row.CreatedAt.UTC(),
	}
	if row.FinishedDate.Valid {
		th.FinishedDate = row.FinishedDate.Time.UTC()
	}
	return th
}

type defenseRow struct {
	ID            string    `db:"id"`
	ThesisID      string    `db:"thesis_id"`
	Date          time.Time `db:"date"`
	Successful    bool      `db:"successful"`
	SecondDefense bool      `db:"second_defense"`
}

type thesisRepository struct {
	db *sqlx.DB
}

var _ thesis.Repository = (*thesisRepository)(nil) // interface compliance check

func NewThesisRepository(db *sqlx.DB) thesis.Repository {
	return &thesisRepository{db: db}
}

func (repo *thesisRepository) CreateThesis(ctx context.Context, th thesis.Thesis) (thesis.Thesis, error) {
	q := `INSERT INTO thesis (` + thesisColumns + `) VALUES (
		:id, :student_id, :supervisor_id, :topic_id, :short_description, :file,
		:finished, :finished_date, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toThesisRow(th)); err != nil {
		return thesis.Thesis{}, errors.Wrap(err, "inserting thesis")
	}
	return repo.GetThesis(ctx, th.ID)
}

func (repo *thesisRepository) GetThesis(ctx context.Context, id string) (thesis.Thesis, error) {
	var row thesisRow
	if err := repo.db.GetContext(ctx, &row, thesisSelect+` WHERE th.id = $1`, id); err != nil {
		return thesis.Thesis{}, trapNoRowsErr(err, thesis.ErrNotFound, "getting thesis")
	}
	return row.toThesis(), nil
}

func (repo *thesisRepository) QueryTheses(ctx context.Context, filter thesis.QueryFilter) ([]thesis.Thesis, error) {
	var w whereClause
	if filter.StudentID != "" {
		w.add("th.student_id = ?", filter.StudentID)
	}
	if filter.SupervisorID != "" {
		w.add("th.supervisor_id = ?", filter.SupervisorID)
	}
	if filter.TopicID != "" {
		w.add("th.topic_id = ?", filter.TopicID)
	}

	var rows []thesisRow
	if err := repo.db.SelectContext(ctx, &rows, thesisSelect+w.String()+` ORDER BY th.created_at, th.id`, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying theses")
	}
	theses := make([]thesis.Thesis, 0, len(rows))
	for _, row := range rows {
		theses = append(theses, row.toThesis())
	}
	return theses, nil
}

func (repo *thesisRepository) UpdateThesis(ctx context.Context, th thesis.Thesis) (thesis.Thesis, error) {
	q := `UPDATE thesis SET student_id = :student_id, supervisor_id = :supervisor_id, topic_id = :topic_id,
		short_description = :short_description, file = :file, finished = :finished,
		finished_date = :finished_date
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toThesisRow(th))
	if err != nil {
		return thesis.Thesis{}, errors.Wrap(err, "updating thesis")
	}
	if err = checkAffected(res, thesis.ErrNotFound, "updating thesis"); err != nil {
		return thesis.Thesis{}, err
	}
	return repo.GetThesis(ctx, th.ID)
}

func (repo *thesisRepository) ThesisHasReviews(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM review WHERE thesis_id = $1)`, id); err != nil {
		return false, errors.Wrap(err, "checking thesis reviews")
	}
	return exists, nil
}

func (repo *thesisRepository) CreateDefense(ctx context.Context, d thesis.Defense) (thesis.Defense, error) {
	q := `INSERT INTO defense (` + defenseColumns + `) VALUES (:id, :thesis_id, :date, :successful, :second_defense)`
	if _, err := repo.db.NamedExecContext(ctx, q, defenseRow(d)); err != nil {
		return thesis.Defense{}, errors.Wrap(err, "inserting defense")
	}
	return d, nil
}

func (repo *thesisRepository) GetDefense(ctx context.Context, id string) (thesis.Defense, error) {
	var row defenseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+defenseColumns+` FROM defense WHERE id = $1`, id); err != nil {
		return thesis.Defense{}, trapNoRowsErr(err, thesis.ErrDefenseNotFound, "getting defense")
	}
	row.Date = row.Date.UTC()
	return thesis.Defense(row), nil
}

func (repo *thesisRepository) QueryDefenses(ctx context.Context, thesisID string) ([]thesis.Defense, error) {
	var rows []defenseRow
	q := `SELECT ` + defenseColumns + ` FROM defense WHERE thesis_id = $1 ORDER BY date`
	if err := repo.db.SelectContext(ctx, &rows, q, thesisID); err != nil {
		return nil, errors.Wrap(err, "querying defenses")
	}
	defenses := make([]thesis.Defense, 0, len(rows))
	for _, row := range rows {
		row.Date = row.Date.UTC()
		defenses = append(defenses, thesis.Defense(row))
	}
	return defenses, nil
}

func (repo *thesisRepository) UpdateDefense(ctx context.Context, d thesis.Defense) (thesis.Defense, error) {
	q := `UPDATE defense SET date = :date, successful = :successful, second_defense = :second_defense WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, defenseRow(d))
	if err != nil {
		return thesis.Defense{}, errors.Wrap(err, "updating defense")
	}
	if err = checkAffected(res, thesis.ErrDefenseNotFound, "updating defense"); err != nil {
		return thesis.Defense{}, err
	}
	return d, nil
}
