package dto

import "blog_backend/internal/models"

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Username string `json:"username" validate:"notblank,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,min=5,max=100"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse - ответ входа: публичные поля пользователя и токен доступа
type LoginResponse struct {
	Message      string       `json:"message"`
	ID           string       `json:"_id"`
	IsAdmin      bool         `json:"isAdmin"`
	ProfilePhoto models.Image `json:"profilePhoto"`
	Token        string       `json:"token"`
}

// ForgotPasswordRequest - запрос кода сброса пароля
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=100"`
}

// ResetPasswordRequest - новый пароль; код сброса приходит в пути запроса
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

// ResetPasswordResponse - успешный сброс сразу выдает новый токен
type ResetPasswordResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// UpdatePasswordRequest - смена пароля аутентифицированным пользователем
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,maxbytes=72"`
}

// MessageResponse - ответ без данных
type MessageResponse struct {
	Message string `json:"message"`
}
