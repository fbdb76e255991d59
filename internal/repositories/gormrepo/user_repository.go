package gormrepo

import (
	"context"
	"errors"
	"time"

	"blog_backend/internal/models"
	"blog_backend/internal/repositories"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Prepare(time.Now().UTC())
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repositories.ErrUserAlreadyExists
	}
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, repositories.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, repositories.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("password_reset_token_hash = ?", hash).First(&user).Error; err != nil {
		return nil, notFound(err, repositories.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&users).Error
	return users, err
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	fields := map[string]interface{}{}
	if upd.Username != nil {
		fields["username"] = *upd.Username
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
	}
	if upd.PasswordHash != nil {
		fields["password_hash"] = *upd.PasswordHash
		fields["password_reset_token_hash"] = nil
		fields["password_reset_token_expires_at"] = nil
	}
	if err := r.update(ctx, id, fields); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) UpdatePhoto(ctx context.Context, id string, photo models.Image) (*models.User, error) {
	err := r.update(ctx, id, map[string]interface{}{
		"profile_photo_url":       photo.URL,
		"profile_photo_public_id": photo.PublicID,
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetPasswordResetToken(ctx context.Context, id, hash string, expiresAt time.Time) error {
	err := r.update(ctx, id, map[string]interface{}{
		"password_reset_token_hash":       hash,
		"password_reset_token_expires_at": expiresAt,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repositories.ErrResetTokenTaken
	}
	return err
}

func (r *userRepository) ClearPasswordResetToken(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]interface{}{
		"password_reset_token_hash":       nil,
		"password_reset_token_expires_at": nil,
	})
}

func (r *userRepository) ConsumePasswordResetToken(ctx context.Context, hash string, now time.Time, passwordHash string) (*models.User, error) {
	var consumed models.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("password_reset_token_hash = ?", hash).First(&consumed).Error; err != nil {
			return notFound(err, repositories.ErrUserNotFound)
		}
		if consumed.ResetExpired(now) {
			return repositories.ErrUserNotFound
		}

		// условие по хешу: параллельный запрос с тем же кодом обновит 0 строк
		res := tx.Model(&models.User{}).
			Where("id = ? AND password_reset_token_hash = ?", consumed.ID, hash).
			Updates(map[string]interface{}{
				"password_hash":                   passwordHash,
				"password_reset_token_hash":       nil,
				"password_reset_token_expires_at": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	consumed.PasswordHash = passwordHash
	consumed.PasswordResetTokenHash = nil
	consumed.PasswordResetTokenExpiresAt = nil
	return &consumed, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, map[string]interface{}{
		"password_hash":                   passwordHash,
		"password_reset_token_hash":       nil,
		"password_reset_token_expires_at": nil,
	})
}

func (r *userRepository) update(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrUserNotFound
	}
	return nil
}
