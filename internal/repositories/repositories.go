package repositories

import (
	"context"
	"errors"
	"time"

	"blog_backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrResetTokenTaken   = errors.New("password reset token is held by another user")
	ErrPostNotFound      = errors.New("post not found")
	ErrCommentNotFound   = errors.New("comment not found")
	ErrCategoryNotFound  = errors.New("category not found")
)

type UserRepository interface {
	// Create возвращает ErrUserAlreadyExists, если email занят
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetTokenHash(ctx context.Context, hash string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)

	// UpdateProfile применяет непустые поля; смена пароля сбрасывает pending reset
	UpdateProfile(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	UpdatePhoto(ctx context.Context, id string, photo models.Image) (*models.User, error)
	Delete(ctx context.Context, id string) error

	// Password reset
	// SetPasswordResetToken возвращает ErrResetTokenTaken, если такой хеш уже
	// записан у другого пользователя
	SetPasswordResetToken(ctx context.Context, id, hash string, expiresAt time.Time) error
	ClearPasswordResetToken(ctx context.Context, id string) error
	// ConsumePasswordResetToken атомарно меняет пароль и очищает код, если код
	// с таким хешем существует и не истек на момент now. Иначе ErrUserNotFound.
	ConsumePasswordResetToken(ctx context.Context, hash string, now time.Time, passwordHash string) (*models.User, error)
	// UpdatePassword меняет хеш пароля и очищает pending reset одной операцией
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) (*models.Post, error)
	// List сортирует по createdAt (новые первыми)
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error)
	UpdateImage(ctx context.Context, id string, image models.Image) (*models.Post, error)
	// ToggleLike добавляет userID в likes или убирает, если он там уже есть
	ToggleLike(ctx context.Context, id, userID string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	FindAll(ctx context.Context) ([]models.Comment, error)
	FindByPost(ctx context.Context, postID string) ([]models.Comment, error)
	UpdateText(ctx context.Context, id, text string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	Delete(ctx context.Context, id string) error
}

// Store объединяет репозитории одного драйвера хранения
type Store struct {
	Users      UserRepository
	Posts      PostRepository
	Comments   CommentRepository
	Categories CategoryRepository

	// Ping проверяет доступность хранилища, Close освобождает соединения
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}
