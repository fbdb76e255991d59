package dto

import "blog_backend/internal/models"

// UpdateProfileRequest - самостоятельное обновление профиля.
// Поля isAdmin здесь нет: роль меняется только администратором напрямую в базе.
type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,notblank,min=2,max=100"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Password *string `json:"password" validate:"omitempty,min=8,maxbytes=72"`
}

// UserProfile - пользователь вместе с его постами
type UserProfile struct {
	models.User
	Posts []models.Post `json:"posts"`
}

// PublicUser - то, что видно о владельце поста
type PublicUser struct {
	ID           string       `json:"_id"`
	Username     string       `json:"username"`
	ProfilePhoto models.Image `json:"profilePhoto"`
}

func NewPublicUser(u *models.User) *PublicUser {
	return &PublicUser{ID: u.ID, Username: u.Username, ProfilePhoto: u.ProfilePhoto}
}
