package services

import (
	"context"
	"errors"
	"strings"

	"blog_backend/internal/auth"
	"blog_backend/internal/logger"
	"blog_backend/internal/models"
	"blog_backend/internal/repositories"
	"blog_backend/internal/services/dto"
	"blog_backend/pkg/apperrors"
)

type PostService interface {
	Create(ctx context.Context, id auth.Identity, req *dto.CreatePostRequest, upload *dto.ImageUpload) (*models.Post, error)
	List(ctx context.Context, query *dto.ListPostsQuery) ([]dto.PostView, error)
	Get(ctx context.Context, postID string) (*dto.PostView, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id auth.Identity, postID string, req *dto.UpdatePostRequest) (*dto.PostView, error)
	UpdateImage(ctx context.Context, id auth.Identity, postID string, upload *dto.ImageUpload) (*models.Post, error)
	Delete(ctx context.Context, id auth.Identity, postID string) error
	ToggleLike(ctx context.Context, id auth.Identity, postID string) (*models.Post, error)
}

type PostServiceImpl struct {
	store   *repositories.Store
	images  ImageService
	perPage int
}

func NewPostService(store *repositories.Store, images ImageService, perPage int) PostService {
	if perPage <= 0 {
		perPage = 3
	}
	return &PostServiceImpl{store: store, images: images, perPage: perPage}
}

func (s *PostServiceImpl) Create(ctx context.Context, id auth.Identity, req *dto.CreatePostRequest, upload *dto.ImageUpload) (*models.Post, error) {
	if err := auth.Authorize(auth.AuthenticatedOnly, &id, ""); err != nil {
		return nil, err
	}

	image, err := s.images.Upload(ctx, upload)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		UserID:      id.UserID,
		Image:       image,
	}
	if err := s.store.Posts.Create(ctx, post); err != nil {
		s.images.Remove(ctx, image)
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Post created", "post_id", post.ID, "user_id", id.UserID)
	return post, nil
}

// List - новые первыми; pageNumber включает пагинацию по per_page
func (s *PostServiceImpl) List(ctx context.Context, query *dto.ListPostsQuery) ([]dto.PostView, error) {
	filter := models.PostFilter{Category: strings.TrimSpace(query.Category)}
	if query.PageNumber > 0 {
		filter.Page = query.PageNumber
		filter.PerPage = s.perPage
	}

	posts, err := s.store.Posts.List(ctx, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	owners := map[string]*dto.PublicUser{}
	views := make([]dto.PostView, 0, len(posts))
	for _, p := range posts {
		owner, err := s.owner(ctx, owners, p.UserID)
		if err != nil {
			return nil, err
		}
		views = append(views, dto.PostView{Post: p, Owner: owner})
	}
	return views, nil
}

func (s *PostServiceImpl) Get(ctx context.Context, postID string) (*dto.PostView, error) {
	post, err := s.store.Posts.FindByID(ctx, postID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	owner, err := s.owner(ctx, map[string]*dto.PublicUser{}, post.UserID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments.FindByPost(ctx, post.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.PostView{Post: *post, Owner: owner, Comments: nonNil(comments)}, nil
}

func (s *PostServiceImpl) Count(ctx context.Context) (int64, error) {
	count, err := s.store.Posts.Count(ctx)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func (s *PostServiceImpl) Update(ctx context.Context, id auth.Identity, postID string, req *dto.UpdatePostRequest) (*dto.PostView, error) {
	post, err := s.store.Posts.FindByID(ctx, postID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := auth.Authorize(auth.OwnerOnly, &id, post.UserID); err != nil {
		return nil, err
	}

	updated, err := s.store.Posts.Update(ctx, postID, models.PostUpdate{
		Title:       trimmed(req.Title),
		Description: trimmed(req.Description),
		Category:    trimmed(req.Category),
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	owner, err := s.owner(ctx, map[string]*dto.PublicUser{}, updated.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.PostView{Post: *updated, Owner: owner}, nil
}

// UpdateImage заменяет картинку поста; старая удаляется после успешной загрузки
func (s *PostServiceImpl) UpdateImage(ctx context.Context, id auth.Identity, postID string, upload *dto.ImageUpload) (*models.Post, error) {
	post, err := s.store.Posts.FindByID(ctx, postID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := auth.Authorize(auth.OwnerOnly, &id, post.UserID); err != nil {
		return nil, err
	}

	image, err := s.images.Upload(ctx, upload)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Posts.UpdateImage(ctx, postID, image)
	if err != nil {
		s.images.Remove(ctx, image)
		return nil, mapRepoError(err)
	}
	s.images.Remove(ctx, post.Image)
	return updated, nil
}

// Delete - владелец или администратор; удаляет картинку и комментарии поста
func (s *PostServiceImpl) Delete(ctx context.Context, id auth.Identity, postID string) error {
	post, err := s.store.Posts.FindByID(ctx, postID)
	if err != nil {
		return mapRepoError(err)
	}
	if err := auth.Authorize(auth.OwnerOrAdmin, &id, post.UserID); err != nil {
		return err
	}

	if err := s.store.Posts.Delete(ctx, post.ID); err != nil {
		return mapRepoError(err)
	}
	s.images.Remove(ctx, post.Image)
	if _, err := s.store.Comments.DeleteByPost(ctx, post.ID); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Post deleted", "post_id", post.ID, "by", id.UserID)
	return nil
}

func (s *PostServiceImpl) ToggleLike(ctx context.Context, id auth.Identity, postID string) (*models.Post, error) {
	if err := auth.Authorize(auth.AuthenticatedOnly, &id, ""); err != nil {
		return nil, err
	}
	post, err := s.store.Posts.ToggleLike(ctx, postID, id.UserID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return post, nil
}

// owner - публичный профиль владельца с кешем на время одного запроса.
// Удаленный владелец не ошибка: пост отдается без owner.
func (s *PostServiceImpl) owner(ctx context.Context, cache map[string]*dto.PublicUser, userID string) (*dto.PublicUser, error) {
	if u, ok := cache[userID]; ok {
		return u, nil
	}
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			cache[userID] = nil
			return nil, nil
		}
		return nil, apperrors.InternalError(err)
	}
	cache[userID] = dto.NewPublicUser(user)
	return cache[userID], nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
