package handlers

import (
	"net/http"

	"blog_backend/internal/middleware"
	"blog_backend/internal/services"
	"blog_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	*BaseHandler
	categoryService services.CategoryService
	auth            *middleware.Authenticator
}

func NewCategoryHandler(base *BaseHandler, categoryService services.CategoryService, authenticator *middleware.Authenticator) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler:     base,
		categoryService: categoryService,
		auth:            authenticator,
	}
}

// DeleteCategoryResponse - ответ удаления категории
type DeleteCategoryResponse struct {
	Message    string `json:"message"`
	CategoryID string `json:"categoryId"`
}

func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/categories")
	{
		categories.POST("", h.auth.RequireAdmin(), h.CreateCategory)
		categories.GET("", h.GetAllCategories)
		categories.DELETE("/:id", middleware.ValidateID("id"), h.auth.RequireAdmin(), h.DeleteCategory)
	}
}

// CreateCategory godoc
// @Summary Создать категорию (только администратор)
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCategoryRequest true "Категория"
// @Success 201 {object} models.Category
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GetAllCategories godoc
// @Summary Все категории
// @Tags categories
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	categories, err := h.categoryService.GetAll(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// DeleteCategory godoc
// @Summary Удалить категорию (только администратор)
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID категории"
// @Success 200 {object} DeleteCategoryResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	categoryID := c.Param("id")
	if err := h.categoryService.Delete(c.Request.Context(), id, categoryID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteCategoryResponse{Message: "Category has been deleted successfully", CategoryID: categoryID})
}
