package services

import (
	"context"
	"strings"

	"blog_backend/internal/auth"
	"blog_backend/internal/logger"
	"blog_backend/internal/models"
	"blog_backend/internal/repositories"
	"blog_backend/internal/services/dto"
	"blog_backend/pkg/apperrors"
)

type UserService interface {
	GetAll(ctx context.Context) ([]dto.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*dto.UserProfile, error)
	UpdateProfile(ctx context.Context, id auth.Identity, userID string, req *dto.UpdateProfileRequest) (*models.User, error)
	Delete(ctx context.Context, id auth.Identity, userID string) error
	UploadPhoto(ctx context.Context, id auth.Identity, upload *dto.ImageUpload) (models.Image, error)
	Count(ctx context.Context) (int64, error)
}

type UserServiceImpl struct {
	store  *repositories.Store
	hasher auth.PasswordHasher
	images ImageService
}

func NewUserService(store *repositories.Store, hasher auth.PasswordHasher, images ImageService) UserService {
	return &UserServiceImpl{store: store, hasher: hasher, images: images}
}

func (s *UserServiceImpl) GetAll(ctx context.Context) ([]dto.UserProfile, error) {
	users, err := s.store.Users.FindAll(ctx)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	profiles := make([]dto.UserProfile, 0, len(users))
	for _, u := range users {
		posts, err := s.store.Posts.List(ctx, models.PostFilter{UserID: u.ID})
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		profiles = append(profiles, dto.UserProfile{User: u, Posts: nonNil(posts)})
	}
	return profiles, nil
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, userID string) (*dto.UserProfile, error) {
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	posts, err := s.store.Posts.List(ctx, models.PostFilter{UserID: user.ID})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.UserProfile{User: *user, Posts: nonNil(posts)}, nil
}

// UpdateProfile - только сам пользователь; новый пароль хешируется, pending reset очищается
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, id auth.Identity, userID string, req *dto.UpdateProfileRequest) (*models.User, error) {
	if err := auth.Authorize(auth.OwnerOnly, &id, userID); err != nil {
		return nil, err
	}

	upd := models.UserUpdate{Bio: req.Bio}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		upd.Username = &name
	}
	if req.Password != nil {
		digest, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		upd.PasswordHash = &digest
	}

	user, err := s.store.Users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, mapRepoError(err)
	}
	logger.CtxInfo(ctx, "Profile updated", "user_id", userID, "password_changed", req.Password != nil)
	return user, nil
}

// Delete удаляет картинки постов и фото профиля, посты, комментарии и самого пользователя
func (s *UserServiceImpl) Delete(ctx context.Context, id auth.Identity, userID string) error {
	if err := auth.Authorize(auth.OwnerOrAdmin, &id, userID); err != nil {
		return err
	}

	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return mapRepoError(err)
	}

	posts, err := s.store.Posts.List(ctx, models.PostFilter{UserID: user.ID})
	if err != nil {
		return apperrors.InternalError(err)
	}
	for _, p := range posts {
		s.images.Remove(ctx, p.Image)
		if _, err := s.store.Comments.DeleteByPost(ctx, p.ID); err != nil {
			return apperrors.InternalError(err)
		}
	}
	s.images.Remove(ctx, user.ProfilePhoto)

	if _, err := s.store.Posts.DeleteByUser(ctx, user.ID); err != nil {
		return apperrors.InternalError(err)
	}
	if _, err := s.store.Comments.DeleteByUser(ctx, user.ID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.store.Users.Delete(ctx, user.ID); err != nil {
		return mapRepoError(err)
	}

	logger.CtxInfo(ctx, "User deleted", "user_id", user.ID, "by", id.UserID, "posts", len(posts))
	return nil
}

// UploadPhoto заменяет фото профиля; старое удаляется после успешной загрузки
func (s *UserServiceImpl) UploadPhoto(ctx context.Context, id auth.Identity, upload *dto.ImageUpload) (models.Image, error) {
	user, err := s.store.Users.FindByID(ctx, id.UserID)
	if err != nil {
		return models.Image{}, mapRepoError(err)
	}

	photo, err := s.images.Upload(ctx, upload)
	if err != nil {
		return models.Image{}, err
	}

	if _, err := s.store.Users.UpdatePhoto(ctx, user.ID, photo); err != nil {
		s.images.Remove(ctx, photo)
		return models.Image{}, mapRepoError(err)
	}
	s.images.Remove(ctx, user.ProfilePhoto)

	return photo, nil
}

func (s *UserServiceImpl) Count(ctx context.Context) (int64, error) {
	count, err := s.store.Users.Count(ctx)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
