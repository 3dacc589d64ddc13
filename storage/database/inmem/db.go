// Package inmemdb keeps every table in process memory.
// It backs the tests and the "memory" database engine.
package inmemdb

import (
	"sync"

	"github.com/olety/Diplomatool/core/faculty"
	"github.com/olety/Diplomatool/core/review"
	"github.com/olety/Diplomatool/core/thesis"
	"github.com/olety/Diplomatool/core/topic"
	"github.com/olety/Diplomatool/core/user"
)

type DB struct {
	mu        sync.RWMutex
	users     map[string]user.User
	faculties map[string]faculty.Faculty
	topics    map[string]topic.Topic
	theses    map[string]thesis.Thesis
	reviews   map[string]review.Review
	defenses  map[string]thesis.Defense
}

func Open() *DB {
	db := new(DB)
	db.Reset()
	return db
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.users = make(map[string]user.User)
	db.faculties = make(map[string]faculty.Faculty)
	db.topics = make(map[string]topic.Topic)
	db.theses = make(map[string]thesis.Thesis)
	db.reviews = make(map[string]review.Review)
	db.defenses = make(map[string]thesis.Defense)
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}
