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

type CommentService interface {
	Create(ctx context.Context, id auth.Identity, req *dto.CreateCommentRequest) (*models.Comment, error)
	GetAll(ctx context.Context) ([]models.Comment, error)
	Update(ctx context.Context, id auth.Identity, commentID string, req *dto.UpdateCommentRequest) (*models.Comment, error)
	Delete(ctx context.Context, id auth.Identity, commentID string) error
}

type CommentServiceImpl struct {
	store *repositories.Store
}

func NewCommentService(store *repositories.Store) CommentService {
	return &CommentServiceImpl{store: store}
}

// Create - автор и пост должны существовать; имя автора сохраняется в комментарии
func (s *CommentServiceImpl) Create(ctx context.Context, id auth.Identity, req *dto.CreateCommentRequest) (*models.Comment, error) {
	user, err := s.store.Users.FindByID(ctx, id.UserID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if _, err := s.store.Posts.FindByID(ctx, req.PostID); err != nil {
		return nil, mapRepoError(err)
	}

	comment := &models.Comment{
		PostID:   req.PostID,
		UserID:   user.ID,
		Text:     strings.TrimSpace(req.Text),
		Username: user.Username,
	}
	if err := s.store.Comments.Create(ctx, comment); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return comment, nil
}

func (s *CommentServiceImpl) GetAll(ctx context.Context) ([]models.Comment, error) {
	comments, err := s.store.Comments.FindAll(ctx)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return nonNil(comments), nil
}

func (s *CommentServiceImpl) Update(ctx context.Context, id auth.Identity, commentID string, req *dto.UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.store.Comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := auth.Authorize(auth.OwnerOnly, &id, comment.UserID); err != nil {
		return nil, err
	}

	updated, err := s.store.Comments.UpdateText(ctx, commentID, strings.TrimSpace(req.Text))
	if err != nil {
		return nil, mapRepoError(err)
	}
	return updated, nil
}

func (s *CommentServiceImpl) Delete(ctx context.Context, id auth.Identity, commentID string) error {
	comment, err := s.store.Comments.FindByID(ctx, commentID)
	if err != nil {
		return mapRepoError(err)
	}
	if err := auth.Authorize(auth.OwnerOrAdmin, &id, comment.UserID); err != nil {
		return err
	}
	return mapRepoError(s.store.Comments.Delete(ctx, commentID))
}
