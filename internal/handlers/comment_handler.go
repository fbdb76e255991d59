package handlers

import (
	"net/http"

	"blog_backend/internal/middleware"
	"blog_backend/internal/services"
	"blog_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	*BaseHandler
	commentService services.CommentService
	auth           *middleware.Authenticator
}

func NewCommentHandler(base *BaseHandler, commentService services.CommentService, authenticator *middleware.Authenticator) *CommentHandler {
	return &CommentHandler{
		BaseHandler:    base,
		commentService: commentService,
		auth:           authenticator,
	}
}

func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	comments := rg.Group("/comments")
	{
		comments.POST("", h.auth.RequireAuth(), h.CreateComment)
		comments.GET("", h.auth.RequireAdmin(), h.GetAllComments)
		comments.DELETE("/:id", middleware.ValidateID("id"), h.auth.RequireAuth(), h.DeleteComment)
		comments.PUT("/:id", middleware.ValidateID("id"), h.auth.RequireAuth(), h.UpdateComment)
	}
}

// CreateComment godoc
// @Summary Добавить комментарий
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCommentRequest true "Комментарий"
// @Success 201 {object} models.Comment
// @Failure 404 {object} apperrors.ErrorResponse "Пост не найден"
// @Router /comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetAllComments godoc
// @Summary Все комментарии (только администратор)
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Comment
// @Router /comments [get]
func (h *CommentHandler) GetAllComments(c *gin.Context) {
	comments, err := h.commentService.GetAll(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// DeleteComment godoc
// @Summary Удалить комментарий (автор или администратор)
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID комментария"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Comment has been deleted"})
}

// UpdateComment godoc
// @Summary Изменить комментарий (только автор)
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID комментария"
// @Param request body dto.UpdateCommentRequest true "Новый текст"
// @Success 200 {object} models.Comment
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /comments/{id} [put]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), id, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}
