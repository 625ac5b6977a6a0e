package adapter_test

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/automate-travel/studio/pkg/adapter"
	"github.com/m-mizutani/gt"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := adapter.NewLocalStorage(t.TempDir())
	gt.NoError(t, err)

	w, err := s.Put(ctx, "sessions/abc/item.png", "image/png")
	gt.NoError(t, err)
	_, err = w.Write([]byte("png-bytes"))
	gt.NoError(t, err)
	gt.NoError(t, w.Close())

	r, err := s.Get(ctx, "sessions/abc/item.png")
	gt.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	gt.NoError(t, err)
	gt.Equal(t, string(data), "png-bytes")

	_, err = s.Get(ctx, "sessions/abc/missing.png")
	gt.Error(t, err)
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	s, err := adapter.NewLocalStorage(t.TempDir())
	gt.NoError(t, err)

	for _, key := range []string{"", "../outside.png", "/etc/passwd"} {
		_, err := s.Put(ctx, key, "image/png")
		gt.Error(t, err)
	}
}

func TestCloudStorage(t *testing.T) {
	bucket := os.Getenv("TEST_STORAGE_BUCKET")
	if bucket == "" {
		t.Skip("TEST_STORAGE_BUCKET is not set")
	}

	ctx := context.Background()
	s, err := adapter.NewStorage(ctx, bucket)
	gt.NoError(t, err)

	w, err := s.Put(ctx, "test/storage_test.txt", "text/plain")
	gt.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	gt.NoError(t, err)
	gt.NoError(t, w.Close())

	r, err := s.Get(ctx, "test/storage_test.txt")
	gt.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	gt.NoError(t, err)
	gt.Equal(t, string(data), "hello")
}
