package dto

type CreateCommentRequest struct {
	PostID string `json:"postId" validate:"required,uuid"`
	Text   string `json:"text" validate:"notblank,max=2000"`
}

type UpdateCommentRequest struct {
	Text string `json:"text" validate:"notblank,max=2000"`
}

type CreateCategoryRequest struct {
	Title string `json:"title" validate:"notblank,max=100"`
}
