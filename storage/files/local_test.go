package filestore

import (
	"context"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olety/Diplomatool/core"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.Nil(t, err)

	key, err := s.Save(ctx, "reviews/abc/review.pdf", strings.NewReader("first"))
	require.Nil(t, err)
	assert.Equal(t, "reviews/abc/review.pdf", key)

	// overwrite
	_, err = s.Save(ctx, key, strings.NewReader("second"))
	require.Nil(t, err)

	f, err := s.Open(ctx, key)
	require.Nil(t, err)
	content, err := ioutil.ReadAll(f)
	require.Nil(t, err)
	require.Nil(t, f.Close())
	assert.Equal(t, "second", string(content))

	_, err = s.Open(ctx, "reviews/missing.pdf")
	assert.True(t, core.IsNotFound(err))
}

func TestLocalStorageInvalidKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.Nil(t, err)

	tests := []string{"", "/", "..", "../etc/passwd", "theses/../../x", "theses/a/.."}
	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := s.Save(ctx, key, strings.NewReader("x"))
			assert.Equal(t, errInvalidKey, err)
			_, err = s.Open(ctx, key)
			assert.Equal(t, errInvalidKey, err)
		})
	}
}

func TestLocalStorageDottedNames(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.Nil(t, err)

	for _, key := range []string{"theses/s1/thesis..final.pdf", "theses/s1/...", "reviews/t1/review..v2.pdf"} {
		t.Run(key, func(t *testing.T) {
			got, err := s.Save(ctx, key, strings.NewReader("body"))
			require.Nil(t, err)
			assert.Equal(t, key, got)

			rc, err := s.Open(ctx, key)
			require.Nil(t, err)
			content, err := ioutil.ReadAll(rc)
			_ = rc.Close()
			require.Nil(t, err)
			assert.Equal(t, "body", string(content))
		})
	}
}

func TestSaveCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := NewLocalStorage(t.TempDir())
	require.Nil(t, err)

	_, err = s.Save(ctx, "theses/a/b.pdf", strings.NewReader("x"))
	assert.NotNil(t, err)
	_, err = s.Open(context.Background(), "theses/a/b.pdf")
	assert.True(t, core.IsNotFound(err))
}
