package services

import (
	"errors"

	"blog_backend/internal/repositories"
	"blog_backend/pkg/apperrors"
)

// mapRepoError переводит ошибки репозиториев в AppError для HTTP слоя
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, repositories.ErrUserAlreadyExists):
		return apperrors.ErrEmailAlreadyExists
	case errors.Is(err, repositories.ErrPostNotFound):
		return apperrors.ErrPostNotFound
	case errors.Is(err, repositories.ErrCommentNotFound):
		return apperrors.ErrCommentNotFound
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return apperrors.ErrCategoryNotFound
	default:
		return apperrors.InternalError(err)
	}
}
