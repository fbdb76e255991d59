package handlers

import (
	"net/http"

	"blog_backend/internal/middleware"
	"blog_backend/internal/models"
	"blog_backend/internal/services"
	"blog_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
	auth        *middleware.Authenticator
}

func NewUserHandler(base *BaseHandler, userService services.UserService, authenticator *middleware.Authenticator) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
		auth:        authenticator,
	}
}

// PhotoResponse - ответ загрузки фото профиля
type PhotoResponse struct {
	Message      string       `json:"message"`
	ProfilePhoto models.Image `json:"profilePhoto"`
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("/profile", h.auth.RequireAdmin(), h.GetAllUsers)
		users.GET("/profile/:id", middleware.ValidateID("id"), h.GetUserProfile)
		users.PUT("/profile/:id", middleware.ValidateID("id"), h.auth.RequireOwner("id"), h.UpdateUserProfile)
		users.DELETE("/profile/:id", middleware.ValidateID("id"), h.auth.RequireOwnerOrAdmin("id"), h.DeleteUserProfile)
		users.POST("/profile/profile-photo-upload", h.auth.RequireAuth(), h.UploadProfilePhoto)
		users.GET("/count", h.auth.RequireAdmin(), h.GetUsersCount)
	}
}

// GetAllUsers godoc
// @Summary Все пользователи с их постами
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.UserProfile
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /users/profile [get]
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.userService.GetAll(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUserProfile godoc
// @Summary Профиль пользователя
// @Tags users
// @Produce json
// @Param id path string true "ID пользователя"
// @Success 200 {object} dto.UserProfile
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /users/profile/{id} [get]
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateUserProfile godoc
// @Summary Обновить свой профиль
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Param request body dto.UpdateProfileRequest true "Изменяемые поля"
// @Success 200 {object} models.User
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /users/profile/{id} [put]
func (h *UserHandler) UpdateUserProfile(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), id, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUserProfile godoc
// @Summary Удалить пользователя вместе с постами, комментариями и картинками
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /users/profile/{id} [delete]
func (h *UserHandler) DeleteUserProfile(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Profile has been deleted"})
}

// UploadProfilePhoto godoc
// @Summary Загрузить фото профиля
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Картинка"
// @Success 200 {object} PhotoResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Router /users/profile/profile-photo-upload [post]
func (h *UserHandler) UploadProfilePhoto(c *gin.Context) {
	id, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	upload, ok := h.ReadImage(c)
	if !ok {
		return
	}

	photo, err := h.userService.UploadPhoto(c.Request.Context(), id, upload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, PhotoResponse{Message: "Your profile photo uploaded successfully", ProfilePhoto: photo})
}

// GetUsersCount godoc
// @Summary Количество пользователей
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {integer} int
// @Router /users/count [get]
func (h *UserHandler) GetUsersCount(c *gin.Context) {
	count, err := h.userService.Count(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}
