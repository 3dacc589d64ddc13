package filestore

import (
	"context"
	"io"
	"path"

	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
)

var ErrNotFound = core.NewNotFoundError("file")

type B2Storage struct {
	bucket *b2.Bucket
	prefix string
}

var _ core.FileStorage = (*B2Storage)(nil) // interface compliance check

// NewB2Storage connects to a Backblaze B2 bucket. Keys are stored below prefix.
func NewB2Storage(ctx context.Context, accountID, appKey, bucketName, prefix string) (*B2Storage, error) {
	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, errors.Wrap(err, "creating b2 client")
	}
	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, errors.Wrap(err, "getting b2 bucket")
	}
	return &B2Storage{bucket: bucket, prefix: prefix}, nil
}

func (s *B2Storage) object(key string) *b2.Object {
	return s.bucket.Object(path.Join(s.prefix, key))
}

func (s *B2Storage) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	w := s.object(key).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "writing b2 object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "closing b2 object")
	}
	return key, nil
}

func (s *B2Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj := s.object(key)
	if _, err := obj.Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "getting b2 object attrs")
	}
	return obj.NewReader(ctx), nil
}
