package handlers

import (
	"net/http"

	"blog_backend/internal/middleware"
	"blog_backend/internal/services"
	"blog_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	*BaseHandler
	postService services.PostService
	auth        *middleware.Authenticator
}

func NewPostHandler(base *BaseHandler, postService services.PostService, authenticator *middleware.Authenticator) *PostHandler {
	return &PostHandler{
		BaseHandler: base,
		postService: postService,
		auth:        authenticator,
	}
}

// DeletePostResponse - ответ удаления поста
type DeletePostResponse struct {
	Message string `json:"message"`
	PostID  string `json:"postId"`
}

func (h *PostHandler) RegisterRoutes(rg *gin.RouterGroup) {
	posts := rg.Group("/posts")
	{
		posts.POST("", h.auth.RequireAuth(), h.CreatePost)
		posts.GET("", h.GetAllPosts)
		posts.GET("/count", h.GetPostsCount)
		posts.GET("/:id", middleware.ValidateID("id"), h.GetPost)
		posts.DELETE("/:id", middleware.ValidateID("id"), h.auth.RequireAuth(), h.DeletePost)
		posts.PUT("/:id", middleware.ValidateID("id"), h.auth.RequireAuth(), h.UpdatePost)
		posts.PUT("/update-image/:id", middleware.ValidateID("id"), h.auth.RequireAuth(), h.UpdatePostImage)
		posts.PUT("/like/:id", middleware.ValidateID("id"), h.auth.RequireAuth(), h.ToggleLike)
	}
}

// CreatePost godoc
// @Summary Создать пост с картинкой
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Картинка"
// @Param title formData string true "Заголовок"
// @Param description formData string true "Текст"
// @Param category formData string true "Категория"
// @Success 201 {object} models.Post
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	upload, ok := h.ReadImage(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !h.BindAndValidate_Form(c, &req) {
		return
	}

	post, err := h.postService.Create(c.Request.Context(), id, &req, upload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetAllPosts godoc
// @Summary Список постов, новые первыми
// @Tags posts
// @Produce json
// @Param pageNumber query int false "Номер страницы"
// @Param category query string false "Категория"
// @Success 200 {array} dto.PostView
// @Router /posts [get]
func (h *PostHandler) GetAllPosts(c *gin.Context) {
	var query dto.ListPostsQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	posts, err := h.postService.List(c.Request.Context(), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPostsCount godoc
// @Summary Количество постов
// @Tags posts
// @Produce json
// @Success 200 {integer} int
// @Router /posts/count [get]
func (h *PostHandler) GetPostsCount(c *gin.Context) {
	count, err := h.postService.Count(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

// GetPost godoc
// @Summary Пост с владельцем и комментариями
// @Tags posts
// @Produce json
// @Param id path string true "ID поста"
// @Success 200 {object} dto.PostView
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary Удалить пост (владелец или администратор)
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID поста"
// @Success 200 {object} DeletePostResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	if err := h.postService.Delete(c.Request.Context(), id, postID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeletePostResponse{Message: "Post has been deleted successfully", PostID: postID})
}

// UpdatePost godoc
// @Summary Обновить пост (только владелец)
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID поста"
// @Param request body dto.UpdatePostRequest true "Изменяемые поля"
// @Success 200 {object} dto.PostView
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	post, err := h.postService.Update(c.Request.Context(), id, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// UpdatePostImage godoc
// @Summary Заменить картинку поста (только владелец)
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID поста"
// @Param image formData file true "Картинка"
// @Success 200 {object} models.Post
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /posts/update-image/{id} [put]
func (h *PostHandler) UpdatePostImage(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	upload, ok := h.ReadImage(c)
	if !ok {
		return
	}

	post, err := h.postService.UpdateImage(c.Request.Context(), id, c.Param("id"), upload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ToggleLike godoc
// @Summary Поставить или снять лайк
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID поста"
// @Success 200 {object} models.Post
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /posts/like/{id} [put]
func (h *PostHandler) ToggleLike(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	post, err := h.postService.ToggleLike(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}
