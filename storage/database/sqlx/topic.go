package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/olety/Diplomatool/core/topic"
)

const topicColumns = `id, name, short_description, level, student_id, supervisor_id,
	voted_for, available, checked, created_at, updated_at`

type topicRow struct {
	ID               string      `db:"id"`
	Name             string      `db:"name"`
	ShortDescription string      `db:"short_description"`
	Level            string      `db:"level"`
	StudentID        null.String `db:"student_id"`
	SupervisorID     string      `db:"supervisor_id"`
	VotedFor         bool        `db:"voted_for"`
	Available        bool        `db:"available"`
	Checked          bool        `db:"checked"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

func toTopicRow(t topic.Topic) topicRow {
	return topicRow{
		ID:               t.ID,
		Name:             t.Name,
		ShortDescription: t.ShortDescription,
		Level:            t.Level,
		StudentID:        null.NewString(t.StudentID, t.StudentID != ""),
		SupervisorID:     t.SupervisorID,
		VotedFor:         t.VotedFor,
		Available:        t.Available,
		Checked:          t.Checked,
		CreatedAt:        t.CreatedAt.UTC(),
		UpdatedAt:        t.UpdatedAt.UTC(),
	}
}

func (row topicRow) toTopic() topic.Topic {
	return topic.Topic{
		ID:               row.ID,
		Name:             row.Name,
		ShortDescription: row.ShortDescription,
		Level:            row.Level,
		StudentID:        row.StudentID.String,
		SupervisorID:     row.SupervisorID,
		VotedFor:         row.VotedFor,
		Available:        row.Available,
		Checked:          row.Checked,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

type topicRepository struct {
	db *sqlx.DB
}

var _ topic.Repository = (*topicRepository)(nil) // interface compliance check

func NewTopicRepository(db *sqlx.DB) topic.Repository {
	return &topicRepository{db: db}
}

func (repo *topicRepository) CreateTopic(ctx context.Context, t topic.Topic) (topic.Topic, error) {
	q := `INSERT INTO topic (` + topicColumns + `) VALUES (
		:id, :name, :short_description, :level, :student_id, :supervisor_id,
		:voted_for, :available, :checked, :created_at, :updated_at)`
	row := toTopicRow(t)
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return topic.Topic{}, errors.Wrap(err, "inserting topic")
	}
	return row.toTopic(), nil
}

func (repo *topicRepository) GetTopic(ctx context.Context, id string) (topic.Topic, error) {
	var row topicRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+topicColumns+` FROM topic WHERE id = $1`, id); err != nil {
		return topic.Topic{}, trapNoRowsErr(err, topic.ErrNotFound, "getting topic")
	}
	return row.toTopic(), nil
}

func (repo *topicRepository) QueryTopics(ctx context.Context, filter topic.QueryFilter) ([]topic.Topic, error) {
	var w whereClause
	if filter.Available != nil {
		w.add("available = ?", *filter.Available)
	}
	if filter.StudentID != "" {
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.SupervisorID != "" {
		w.add("supervisor_id = ?", filter.SupervisorID)
	}

	var rows []topicRow
	q := `SELECT ` + topicColumns + ` FROM topic` + w.String() + ` ORDER BY created_at, id`
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying topics")
	}
	topics := make([]topic.Topic, 0, len(rows))
	for _, row := range rows {
		topics = append(topics, row.toTopic())
	}
	return topics, nil
}

func (repo *topicRepository) UpdateTopic(ctx context.Context, t topic.Topic) (topic.Topic, error) {
	q := `UPDATE topic SET name = :name, short_description = :short_description, level = :level,
		student_id = :student_id, supervisor_id = :supervisor_id, voted_for = :voted_for,
		available = :available, checked = :checked, updated_at = :updated_at
		WHERE id = :id`
	row := toTopicRow(t)
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return topic.Topic{}, errors.Wrap(err, "updating topic")
	}
	if err = checkAffected(res, topic.ErrNotFound, "updating topic"); err != nil {
		return topic.Topic{}, err
	}
	return row.toTopic(), nil
}
