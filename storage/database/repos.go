package database

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/faculty"
	"github.com/olety/Diplomatool/core/review"
	"github.com/olety/Diplomatool/core/thesis"
	"github.com/olety/Diplomatool/core/topic"
	"github.com/olety/Diplomatool/core/user"
	inmemdb "github.com/olety/Diplomatool/storage/database/inmem"
	sqlxrepos "github.com/olety/Diplomatool/storage/database/sqlx"
)

const (
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

// Repositories groups the repositories of the engine selected by conf.Database.Engine.
type Repositories struct {
	DB *sqlx.DB // nil with the memory engine

	User    user.Repository
	Faculty faculty.Repository
	Topic   topic.Repository
	Thesis  thesis.Repository
	Review  review.Repository
}

// OpenRepositories connects to the configured engine.
// With postgres, the database is created when missing and, if migrate is set, migrated.
func OpenRepositories(conf *core.Config, migrate bool) (*Repositories, error) {
	switch conf.Database.Engine {
	case EngineMemory:
		db := inmemdb.Open()
		return &Repositories{
			User:    inmemdb.NewUserRepository(db),
			Faculty: inmemdb.NewFacultyRepository(db),
			Topic:   inmemdb.NewTopicRepository(db),
			Thesis:  inmemdb.NewThesisRepository(db),
			Review:  inmemdb.NewReviewRepository(db),
		}, nil

	case EnginePostgres:
		if err := CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := Open(conf)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err = Migrate(db.DB); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Repositories{
			DB:      db,
			User:    sqlxrepos.NewUserRepository(db),
			Faculty: sqlxrepos.NewFacultyRepository(db),
			Topic:   sqlxrepos.NewTopicRepository(db),
			Thesis:  sqlxrepos.NewThesisRepository(db),
			Review:  sqlxrepos.NewReviewRepository(db),
		}, nil
	}
	return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}

func (r *Repositories) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}
