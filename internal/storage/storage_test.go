package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"blog_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewLocalStorage(config.StorageConfig{BasePath: dir, BaseURL: "http://localhost:8000/uploads/"})
	require.NoError(t, err)

	key := "images/2024/05/abc.png"
	require.NoError(t, s.Save(ctx, key, strings.NewReader("png-bytes"), "image/png"))

	data, err := os.ReadFile(filepath.Join(dir, "images", "2024", "05", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:8000/uploads/images/2024/05/abc.png", s.URL(key))

	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// повторное удаление не ошибка
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(config.StorageConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../secret", "images/../../x", `a\b`} {
		err := s.Save(context.Background(), key, strings.NewReader("x"), "text/plain")
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestNewStorage_UnknownType(t *testing.T) {
	_, err := NewStorage(context.Background(), config.StorageConfig{Type: "ftp"})
	assert.Error(t, err)
}

// fakeS3 - минимальный S3 API в path-style: PUT, HEAD, DELETE
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3Storage_Lifecycle(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	fake := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	s, err := NewS3Storage(ctx, config.StorageConfig{
		Bucket:    "blog",
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
		Endpoint:  srv.URL,
	})
	require.NoError(t, err)

	key := "images/2024/05/abc.jpg"
	require.NoError(t, s.Save(ctx, key, bytes.NewReader([]byte("jpeg-bytes")), "image/jpeg"))

	fake.mu.Lock()
	_, stored := fake.objects["/blog/"+key]
	fake.mu.Unlock()
	assert.True(t, stored)

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, srv.URL+"/blog/"+key, s.URL(key))

	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com",
		publicBaseURL(config.StorageConfig{BaseURL: "https://cdn.example.com/", Bucket: "b"}, "eu-west-1"))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com",
		publicBaseURL(config.StorageConfig{Bucket: "b"}, "eu-west-1"))
}
