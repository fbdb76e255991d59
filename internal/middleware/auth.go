package middleware

import (
	"strings"

	"blog_backend/internal/auth"
	"blog_backend/internal/logger"
	"blog_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Authenticator - middleware проверки bearer токена и политик доступа
type Authenticator struct {
	tokens *auth.TokenManager
}

func NewAuthenticator(tokens *auth.TokenManager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// RequireAuth проверяет заголовок Authorization и кладет личность в контекст
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			return
		}
		c.Next()
	}
}

func (a *Authenticator) authenticate(c *gin.Context) bool {
	if _, ok := GetIdentity(c); ok {
		return true
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		abort(c, apperrors.ErrUnauthenticated)
		return false
	}

	scheme, tokenStr, ok := strings.Cut(header, " ")
	tokenStr = strings.TrimSpace(tokenStr)
	if !ok || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
		abort(c, apperrors.ErrInvalidAccessToken)
		return false
	}

	id, err := a.tokens.Verify(tokenStr)
	if err != nil {
		logger.CtxDebug(c.Request.Context(), "Token rejected", "error", err.Error())
		abort(c, apperrors.ErrInvalidAccessToken)
		return false
	}

	ctx := auth.WithIdentity(c.Request.Context(), id)
	ctx = logger.WithUserID(ctx, id.UserID)
	c.Request = c.Request.WithContext(ctx)
	c.Set(identityKey, id)
	return true
}

// RequireOwner - только сам пользователь из параметра пути param
func (a *Authenticator) RequireOwner(param string) gin.HandlerFunc {
	return a.gate(auth.OwnerOnly, param)
}

// RequireOwnerOrAdmin - пользователь из параметра пути param или администратор
func (a *Authenticator) RequireOwnerOrAdmin(param string) gin.HandlerFunc {
	return a.gate(auth.OwnerOrAdmin, param)
}

func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return a.gate(auth.AdminOnly, "")
}

// gate аутентифицирует запрос (если это еще не сделано) и проверяет политику
func (a *Authenticator) gate(p auth.Policy, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			return
		}

		id, _ := GetIdentity(c)
		var ownerID string
		if param != "" {
			ownerID = c.Param(param)
		}
		if err := auth.Authorize(p, &id, ownerID); err != nil {
			logger.CtxWarn(c.Request.Context(), "Access denied", "policy", p.String(), "path", c.Request.URL.Path)
			abort(c, err)
			return
		}
		c.Next()
	}
}

// GetIdentity извлекает личность, установленную RequireAuth
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	id, ok := val.(auth.Identity)
	return id, ok
}

// abort рендерит ошибку и прерывает цепочку
func abort(c *gin.Context, err error) {
	apperrors.HandleError(c, err)
}
