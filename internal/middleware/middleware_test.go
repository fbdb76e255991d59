package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blog_backend/internal/auth"
	"blog_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager("middleware-secret", time.Hour)
}

func issue(t *testing.T, tokens *auth.TokenManager, userID string, admin bool) string {
	t.Helper()
	token, err := tokens.Issue(userID, admin)
	require.NoError(t, err)
	return token
}

func serve(r *gin.Engine, method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	tokens := newTokens()
	a := NewAuthenticator(tokens)

	r := gin.New()
	r.GET("/me", a.RequireAuth(), func(c *gin.Context) {
		id, ok := GetIdentity(c)
		require.True(t, ok)
		ctxID, ok := auth.IdentityFromContext(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, id, ctxID)
		c.String(http.StatusOK, id.UserID)
	})

	expired := auth.NewTokenManager("middleware-secret", time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	otherSecret := auth.NewTokenManager("another-secret", time.Hour)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer " + issue(t, tokens, "u1", false), wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + issue(t, tokens, "u1", false), wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + issue(t, expired, "u1", false), wantStatus: http.StatusUnauthorized},
		{name: "foreign signature", header: "Bearer " + issue(t, otherSecret, "u1", false), wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, "/me", tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			}
		})
	}
}

func TestGates(t *testing.T) {
	tokens := newTokens()
	a := NewAuthenticator(tokens)

	var reached int
	ok := func(c *gin.Context) {
		reached++
		c.Status(http.StatusNoContent)
	}

	r := gin.New()
	r.PUT("/users/:id", a.RequireOwner("id"), ok)
	r.DELETE("/users/:id", a.RequireOwnerOrAdmin("id"), ok)
	r.GET("/admin", a.RequireAdmin(), ok)

	user := "Bearer " + issue(t, tokens, "u1", false)
	stranger := "Bearer " + issue(t, tokens, "u2", false)
	admin := "Bearer " + issue(t, tokens, "root", true)

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
	}{
		{name: "owner updates self", method: http.MethodPut, path: "/users/u1", header: user, wantStatus: http.StatusNoContent},
		{name: "stranger updates other", method: http.MethodPut, path: "/users/u1", header: stranger, wantStatus: http.StatusForbidden},
		{name: "admin is not owner", method: http.MethodPut, path: "/users/u1", header: admin, wantStatus: http.StatusForbidden},
		{name: "anonymous update", method: http.MethodPut, path: "/users/u1", header: "", wantStatus: http.StatusUnauthorized},
		{name: "owner deletes self", method: http.MethodDelete, path: "/users/u1", header: user, wantStatus: http.StatusNoContent},
		{name: "admin deletes other", method: http.MethodDelete, path: "/users/u1", header: admin, wantStatus: http.StatusNoContent},
		{name: "stranger deletes other", method: http.MethodDelete, path: "/users/u1", header: stranger, wantStatus: http.StatusForbidden},
		{name: "admin route as admin", method: http.MethodGet, path: "/admin", header: admin, wantStatus: http.StatusNoContent},
		{name: "admin route as user", method: http.MethodGet, path: "/admin", header: user, wantStatus: http.StatusForbidden},
		{name: "admin route anonymous", method: http.MethodGet, path: "/admin", header: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := reached
			w := serve(r, tt.method, tt.path, tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, before+1, reached)
			} else {
				assert.Equal(t, before, reached, "handler must not run after a denied check")
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	r := gin.New()
	r.NoRoute(apperrors.NotFoundHandler)
	r.GET("/posts/:id", ValidateID("id"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	id := uuid.NewString()
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/posts/"+id, "").Code)

	for _, raw := range []string{
		"42",
		strings.ToUpper(id),
		"%7B" + id + "%7D",
		"urn:uuid:" + id,
		strings.ReplaceAll(id, "-", ""),
	} {
		assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/posts/"+raw, "").Code, raw)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))

	w = serve(r, http.MethodGet, "/", "")
	assert.NoError(t, uuid.Validate(w.Header().Get(requestIDHeader)))
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://blog.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://blog.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://blog.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
