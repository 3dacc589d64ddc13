package filestore

import (
	"context"

	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
)

// New returns the storage backend selected by conf.Storage.Backend.
func New(ctx context.Context, conf *core.Config) (core.FileStorage, error) {
	switch conf.Storage.Backend {
	case "", "local":
		return NewLocalStorage(conf.Storage.Root)
	case "b2":
		s := conf.Storage
		return NewB2Storage(ctx, s.B2AccountID, s.B2AppKey, s.B2Bucket, s.B2BucketPath)
	default:
		return nil, errors.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}
