package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"blog_backend/internal/auth"
	"blog_backend/internal/logger"
	"blog_backend/internal/metrics"
	"blog_backend/internal/models"
	"blog_backend/internal/repositories"
	"blog_backend/internal/services/dto"
	"blog_backend/pkg/apperrors"
)

// forgotPasswordMessage одинаков для известного и неизвестного email
const forgotPasswordMessage = "If an account with that email exists, a password reset code has been sent"

// resetCodeAttempts - сколько раз перевыпускать код, если хеш уже занят другим пользователем
const resetCodeAttempts = 5

// ResetMailer доставляет код сброса пароля
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, username, code string, ttl time.Duration) error
}

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) error
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.MessageResponse, error)
	ResetPassword(ctx context.Context, code string, req *dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error)
	UpdatePassword(ctx context.Context, id auth.Identity, req *dto.UpdatePasswordRequest) error
	// EnsureAdmin создает администратора, если пользователя с таким email еще нет
	EnsureAdmin(ctx context.Context, username, email, password string) (bool, error)
}

// AuthOptions - параметры сценария сброса пароля
type AuthOptions struct {
	ResetTTL       time.Duration
	ResetCodeBytes int
	Now            func() time.Time
	// NewCode выпускает код и его хеш; по умолчанию auth.NewResetCode
	NewCode func(n int) (code, hash string, err error)
}

type AuthServiceImpl struct {
	users  repositories.UserRepository
	hasher auth.PasswordHasher
	tokens *auth.TokenManager
	mailer ResetMailer
	opts   AuthOptions
}

func NewAuthService(
	users repositories.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenManager,
	mailer ResetMailer,
	opts AuthOptions,
) AuthService {
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = 10 * time.Minute
	}
	if opts.ResetCodeBytes <= 0 {
		opts.ResetCodeBytes = 3
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewCode == nil {
		opts.NewCode = auth.NewResetCode
	}
	return &AuthServiceImpl{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		mailer: mailer,
		opts:   opts,
	}
}

// Register - регистрация нового пользователя
func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) error {
	email := models.NormalizeEmail(req.Email)

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return apperrors.InternalError(err)
	}

	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        email,
		PasswordHash: digest,
		ProfilePhoto: models.Image{URL: models.DefaultProfilePhotoURL},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return mapRepoError(err)
	}

	logger.CtxInfo(ctx, "User registered", "user_id", user.ID)
	return nil
}

// Login - аутентификация по email и паролю
func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.LoginResponse{
		Message:      "Logged in successfully",
		ID:           user.ID,
		IsAdmin:      user.IsAdmin,
		ProfilePhoto: user.ProfilePhoto,
		Token:        token,
	}, nil
}

// ForgotPassword выпускает код сброса и отправляет его на почту.
// Ответ не зависит от того, существует ли email. При сбое доставки код удаляется.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.MessageResponse, error) {
	metrics.PasswordReset(metrics.ResetRequested)
	resp := &dto.MessageResponse{Message: forgotPasswordMessage}

	user, err := s.users.FindByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			metrics.PasswordReset(metrics.ResetUnknownEmail)
			logger.CtxDebug(ctx, "Password reset requested for unknown email")
			return resp, nil
		}
		return nil, apperrors.InternalError(err)
	}

	expiresAt := s.opts.Now().Add(s.opts.ResetTTL)
	code, err := s.issueResetCode(ctx, user.ID, expiresAt)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Username, code, s.opts.ResetTTL); err != nil {
		metrics.PasswordReset(metrics.ResetDeliveryFailed)
		logger.CtxWithError(ctx, "Failed to deliver password reset code", err, "user_id", user.ID)

		// откат не атомарен с доставкой
		if clearErr := s.users.ClearPasswordResetToken(ctx, user.ID); clearErr != nil {
			logger.CtxWithError(ctx, "Failed to roll back password reset code", clearErr, "user_id", user.ID)
		}
		return nil, apperrors.ErrDeliveryFailure.WithError(err)
	}

	metrics.PasswordReset(metrics.ResetSent)
	logger.CtxInfo(ctx, "Password reset code sent", "user_id", user.ID, "expires_at", expiresAt)
	return resp, nil
}

// issueResetCode записывает новый код пользователю; код, хеш которого уже
// принадлежит другому пользователю, перевыпускается
func (s *AuthServiceImpl) issueResetCode(ctx context.Context, userID string, expiresAt time.Time) (string, error) {
	for attempt := 1; attempt <= resetCodeAttempts; attempt++ {
		code, hash, err := s.opts.NewCode(s.opts.ResetCodeBytes)
		if err != nil {
			return "", apperrors.InternalError(err)
		}

		err = s.users.SetPasswordResetToken(ctx, userID, hash, expiresAt)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, repositories.ErrResetTokenTaken) {
			return "", mapRepoError(err)
		}
		logger.CtxWarn(ctx, "Password reset code collided, regenerating", "user_id", userID, "attempt", attempt)
	}
	return "", apperrors.InternalError(fmt.Errorf("no free password reset code after %d attempts", resetCodeAttempts))
}

// ResetPassword меняет пароль по коду сброса и сразу выдает новый токен.
// Неверный код не меняет состояние: пока код не истек, можно пробовать снова.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, code string, req *dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error) {
	hash := auth.HashResetCode(strings.ToLower(strings.TrimSpace(code)))
	now := s.opts.Now()

	user, err := s.users.FindByResetTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			metrics.PasswordReset(metrics.ResetRejected)
			return nil, apperrors.ErrInvalidOrExpiredToken
		}
		return nil, apperrors.InternalError(err)
	}

	if user.ResetExpired(now) {
		metrics.PasswordReset(metrics.ResetRejected)
		// ленивое удаление истекшего кода
		if err := s.users.ClearPasswordResetToken(ctx, user.ID); err != nil {
			logger.CtxWithError(ctx, "Failed to clear expired reset code", err, "user_id", user.ID)
		}
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	updated, err := s.users.ConsumePasswordResetToken(ctx, hash, now, digest)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// код использован параллельным запросом или истек между проверками
			metrics.PasswordReset(metrics.ResetRejected)
			return nil, apperrors.ErrInvalidOrExpiredToken
		}
		return nil, apperrors.InternalError(err)
	}

	token, err := s.tokens.Issue(updated.ID, updated.IsAdmin)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.PasswordReset(metrics.ResetCompleted)
	logger.CtxInfo(ctx, "Password reset completed", "user_id", updated.ID)
	return &dto.ResetPasswordResponse{Message: "Password has been reset successfully", Token: token}, nil
}

// UpdatePassword - смена пароля с проверкой текущего
func (s *AuthServiceImpl) UpdatePassword(ctx context.Context, id auth.Identity, req *dto.UpdatePasswordRequest) error {
	user, err := s.users.FindByID(ctx, id.UserID)
	if err != nil {
		return mapRepoError(err)
	}

	ok, err := s.hasher.Verify(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !ok {
		return apperrors.ErrWrongCurrentPassword
	}

	digest, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, digest); err != nil {
		return mapRepoError(err)
	}

	logger.CtxInfo(ctx, "Password updated", "user_id", user.ID)
	return nil
}

func (s *AuthServiceImpl) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	email = models.NormalizeEmail(email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return false, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	if username == "" {
		username = "admin"
	}

	admin := &models.User{
		Username:          username,
		Email:             email,
		PasswordHash:      digest,
		ProfilePhoto:      models.Image{URL: models.DefaultProfilePhotoURL},
		IsAdmin:           true,
		IsAccountVerified: true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		// параллельный старт второго экземпляра уже создал администратора
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
