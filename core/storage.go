package core

import (
	"context"
	"io"
)

// FileStorage persists uploaded documents under slash separated keys.
type FileStorage interface {
	// Save writes r under key, replacing any previous content, and returns the stored key.
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	// Open returns a reader on the content stored under key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
