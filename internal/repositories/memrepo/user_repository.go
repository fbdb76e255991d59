package memrepo

import (
	"context"
	"time"

	"blog_backend/internal/models"
	"blog_backend/internal/repositories"
)

type userRepository struct {
	db *db
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}

	user.Prepare(r.db.now())
	r.db.users[user.ID] = copyUser(user)
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepository) FindByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.PasswordResetTokenHash != nil && *u.PasswordResetTokenHash == hash {
			return copyUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepository) FindAll(ctx context.Context) ([]models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := make([]models.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		users = append(users, *copyUser(u))
	}
	sortNewestFirst(users,
		func(u models.User) time.Time { return u.CreatedAt },
		func(u models.User) string { return u.ID },
	)
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.users)), nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
		u.PasswordResetTokenHash = nil
		u.PasswordResetTokenExpiresAt = nil
	}
	u.UpdatedAt = r.db.now()
	return copyUser(u), nil
}

func (r *userRepository) UpdatePhoto(ctx context.Context, id string, photo models.Image) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	u.ProfilePhoto = photo
	u.UpdatedAt = r.db.now()
	return copyUser(u), nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.db.users, id)
	return nil
}

func (r *userRepository) SetPasswordResetToken(ctx context.Context, id, hash string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	for otherID, other := range r.db.users {
		if otherID != id && other.PasswordResetTokenHash != nil && *other.PasswordResetTokenHash == hash {
			return repositories.ErrResetTokenTaken
		}
	}
	u.PasswordResetTokenHash = &hash
	u.PasswordResetTokenExpiresAt = &expiresAt
	u.UpdatedAt = r.db.now()
	return nil
}

func (r *userRepository) ClearPasswordResetToken(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordResetTokenHash = nil
	u.PasswordResetTokenExpiresAt = nil
	u.UpdatedAt = r.db.now()
	return nil
}

func (r *userRepository) ConsumePasswordResetToken(ctx context.Context, hash string, now time.Time, passwordHash string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.PasswordResetTokenHash == nil || *u.PasswordResetTokenHash != hash {
			continue
		}
		if u.ResetExpired(now) {
			return nil, repositories.ErrUserNotFound
		}
		u.PasswordHash = passwordHash
		u.PasswordResetTokenHash = nil
		u.PasswordResetTokenExpiresAt = nil
		u.UpdatedAt = r.db.now()
		return copyUser(u), nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.UpdateProfile(ctx, id, models.UserUpdate{PasswordHash: &passwordHash})
	return err
}
