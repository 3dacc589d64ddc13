package inmemdb

import (
	"context"
	"sort"

	"github.com/olety/Diplomatool/core/topic"
)

type topicRepository struct {
	db *DB
}

var _ topic.Repository = (*topicRepository)(nil) // interface compliance check

func NewTopicRepository(db *DB) topic.Repository {
	return &topicRepository{db: db}
}

func (repo *topicRepository) CreateTopic(_ context.Context, t topic.Topic) (topic.Topic, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.topics[t.ID] = t
	return t, nil
}

func (repo *topicRepository) GetTopic(_ context.Context, id string) (topic.Topic, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.db.topics[id]; ok {
		return t, nil
	}
	return topic.Topic{}, topic.ErrNotFound
}

func (repo *topicRepository) QueryTopics(_ context.Context, filter topic.QueryFilter) ([]topic.Topic, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	topics := make([]topic.Topic, 0)
	for _, t := range repo.db.topics {
		if filter.Available != nil && t.Available != *filter.Available {
			continue
		}
		if filter.StudentID != "" && t.StudentID != filter.StudentID {
			continue
		}
		if filter.SupervisorID != "" && t.SupervisorID != filter.SupervisorID {
			continue
		}
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if !topics[i].CreatedAt.Equal(topics[j].CreatedAt) {
			return topics[i].CreatedAt.Before(topics[j].CreatedAt)
		}
		return topics[i].ID < topics[j].ID
	})
	return topics, nil
}

func (repo *topicRepository) UpdateTopic(_ context.Context, t topic.Topic) (topic.Topic, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.topics[t.ID]; !ok {
		return topic.Topic{}, topic.ErrNotFound
	}
	repo.db.topics[t.ID] = t
	return t, nil
}
