package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"blog_backend/internal/imageprocessor"
	"blog_backend/internal/logger"
	"blog_backend/internal/models"
	"blog_backend/internal/services/dto"
	"blog_backend/internal/storage"
	"blog_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// ImageService загружает картинки на image host и удаляет их оттуда
type ImageService interface {
	Upload(ctx context.Context, upload *dto.ImageUpload) (models.Image, error)
	// Remove удаляет объект картинки; сбой только логируется
	Remove(ctx context.Context, image models.Image)
}

type ImageServiceImpl struct {
	storage   storage.Storage
	processor *imageprocessor.Processor
	maxSize   int64
	now       func() time.Time
}

func NewImageService(st storage.Storage, processor *imageprocessor.Processor, maxSize int64) ImageService {
	return &ImageServiceImpl{
		storage:   st,
		processor: processor,
		maxSize:   maxSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *ImageServiceImpl) Upload(ctx context.Context, upload *dto.ImageUpload) (models.Image, error) {
	if upload == nil || len(upload.Data) == 0 {
		return models.Image{}, apperrors.ErrImageRequired
	}
	if s.maxSize > 0 && int64(len(upload.Data)) > s.maxSize {
		return models.Image{}, apperrors.ErrFileTooLarge
	}

	res, err := s.processor.Process(upload.Data)
	if err != nil {
		if errors.Is(err, imageprocessor.ErrUnsupportedImage) {
			return models.Image{}, apperrors.ErrUnsupportedImage.WithError(err)
		}
		return models.Image{}, apperrors.InternalError(err)
	}

	now := s.now()
	key := fmt.Sprintf("images/%04d/%02d/%s.%s", now.Year(), int(now.Month()), uuid.NewString(), res.Ext)
	if err := s.storage.Save(ctx, key, bytes.NewReader(res.Data), res.ContentType); err != nil {
		return models.Image{}, apperrors.ExternalServiceError(err, "storage", "Failed to upload image")
	}

	logger.CtxDebug(ctx, "Image uploaded", "key", key, "width", res.Width, "height", res.Height)
	return models.Image{URL: s.storage.URL(key), PublicID: key}, nil
}

func (s *ImageServiceImpl) Remove(ctx context.Context, image models.Image) {
	if !image.HasObject() {
		return
	}
	if err := s.storage.Delete(ctx, image.PublicID); err != nil {
		logger.CtxWithError(ctx, "Failed to remove image", err, "key", image.PublicID)
	}
}
