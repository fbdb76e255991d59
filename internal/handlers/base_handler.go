package handlers

import (
	"errors"
	"io"
	"net/http"

	"blog_backend/internal/auth"
	"blog_backend/internal/logger"
	"blog_backend/internal/middleware"
	"blog_backend/internal/services/dto"
	"blog_backend/internal/validator"
	"blog_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// запас на поля формы и заголовки частей multipart
const multipartOverhead = 1 << 20

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator     *validator.Validator
	maxUploadSize int64
}

func NewBaseHandler(v *validator.Validator, maxUploadSize int64) *BaseHandler {
	return &BaseHandler{
		validator:     v,
		maxUploadSize: maxUploadSize,
	}
}

// ============================================================================
// 2. Методы привязки и валидации
// ============================================================================

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindQuery(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind query params", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters"))
		return false
	}
	return h.validate(c, obj)
}

// BindAndValidate_Form читает поля multipart формы; вызывать после ReadImage
func (h *BaseHandler) BindAndValidate_Form(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindWith(obj, binding.FormMultipart); err != nil {
		logger.CtxWithError(ctx, "Failed to bind form", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid form data"))
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := h.validator.Validate(obj); err != nil {
		var vErr *validator.ValidationError
		if errors.As(err, &vErr) {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// ============================================================================
// 3. Загрузка картинок
// ============================================================================

// ReadImage читает файл из поля "image" с ограничением размера
func (h *BaseHandler) ReadImage(c *gin.Context) (*dto.ImageUpload, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			apperrors.HandleError(c, apperrors.ErrFileTooLarge)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			apperrors.HandleError(c, apperrors.ErrImageRequired)
		default:
			logger.CtxWithError(c.Request.Context(), "Failed to parse multipart form", err)
			apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid multipart form"))
		}
		return nil, false
	}

	if fileHeader.Size > h.maxUploadSize {
		apperrors.HandleError(c, apperrors.ErrFileTooLarge)
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.HandleServiceError(c, err)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		h.HandleServiceError(c, err)
		return nil, false
	}
	if int64(len(data)) > h.maxUploadSize {
		apperrors.HandleError(c, apperrors.ErrFileTooLarge)
		return nil, false
	}

	return &dto.ImageUpload{Filename: fileHeader.Filename, Data: data}, true
}

// ============================================================================
// 4. Обработчики ошибок
// ============================================================================

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	if appErr, ok := apperrors.AsAppError(err); ok {
		if appErr.HTTPCode < http.StatusInternalServerError {
			logger.CtxWarn(ctx, "Service error",
				"code", appErr.Code,
				"error", appErr.Message,
				"path", c.Request.URL.Path,
			)
		}
		apperrors.HandleError(c, appErr)
		return
	}

	logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
	apperrors.HandleError(c, apperrors.InternalError(err))
}

// ============================================================================
// 5. Вспомогательные функции
// ============================================================================

// GetIdentity возвращает личность из RequireAuth или отвечает 401
func (h *BaseHandler) GetIdentity(c *gin.Context) (auth.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok || id.UserID == "" {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: identity not found in context",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		apperrors.HandleError(c, apperrors.ErrUnauthenticated)
		return auth.Identity{}, false
	}
	return id, true
}
