package dto

import "blog_backend/internal/models"

// CreatePostRequest - поля multipart формы; файл приходит отдельно в поле image
type CreatePostRequest struct {
	Title       string `json:"title" form:"title" validate:"notblank,min=2,max=200"`
	Description string `json:"description" form:"description" validate:"notblank,min=10"`
	Category    string `json:"category" form:"category" validate:"notblank,max=100"`
}

type UpdatePostRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,notblank,min=10"`
	Category    *string `json:"category" validate:"omitempty,notblank,max=100"`
}

// ListPostsQuery - ?pageNumber=N&category=X
type ListPostsQuery struct {
	PageNumber int    `form:"pageNumber" validate:"omitempty,min=1"`
	Category   string `form:"category" validate:"omitempty,max=100"`
}

// PostView - пост с владельцем и (для одного поста) комментариями
type PostView struct {
	models.Post
	Owner    *PublicUser      `json:"owner,omitempty"`
	Comments []models.Comment `json:"comments,omitempty"`
}

// ImageUpload - файл из поля image multipart запроса
type ImageUpload struct {
	Filename string
	Data     []byte
}
