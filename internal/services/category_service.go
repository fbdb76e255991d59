package services

import (
	"context"
	"strings"

	"blog_backend/internal/auth"
	"blog_backend/internal/models"
	"blog_backend/internal/repositories"
	"blog_backend/internal/services/dto"
	"blog_backend/pkg/apperrors"
)

type CategoryService interface {
	Create(ctx context.Context, id auth.Identity, req *dto.CreateCategoryRequest) (*models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	Delete(ctx context.Context, id auth.Identity, categoryID string) error
}

type CategoryServiceImpl struct {
	categories repositories.CategoryRepository
}

func NewCategoryService(categories repositories.CategoryRepository) CategoryService {
	return &CategoryServiceImpl{categories: categories}
}

func (s *CategoryServiceImpl) Create(ctx context.Context, id auth.Identity, req *dto.CreateCategoryRequest) (*models.Category, error) {
	if err := auth.Authorize(auth.AdminOnly, &id, ""); err != nil {
		return nil, err
	}

	category := &models.Category{UserID: id.UserID, Title: strings.TrimSpace(req.Title)}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return category, nil
}

func (s *CategoryServiceImpl) GetAll(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return nonNil(categories), nil
}

func (s *CategoryServiceImpl) Delete(ctx context.Context, id auth.Identity, categoryID string) error {
	if err := auth.Authorize(auth.AdminOnly, &id, ""); err != nil {
		return err
	}
	return mapRepoError(s.categories.Delete(ctx, categoryID))
}
