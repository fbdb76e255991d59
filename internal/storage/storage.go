package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"blog_backend/internal/config"
)

var ErrInvalidKey = errors.New("invalid object key")

// Storage - хранилище картинок (image host). Ключ объекта - publicId картинки.
type Storage interface {
	// Save stores an object under key
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes the object; a missing object is not an error
	Delete(ctx context.Context, key string) error

	// Exists checks if the object exists
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the public URL of the object
	URL(key string) string
}

// NewStorage creates a storage instance based on configuration
func NewStorage(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// cleanKey отсекает абсолютные пути и выход за пределы корня хранилища
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
