package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"blog_backend/internal/config"
	"blog_backend/internal/models"
	"blog_backend/internal/repositories/memrepo"
	"blog_backend/internal/services/dto"
	"blog_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// captureMailer запоминает последний отправленный код
type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, to, _, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[to] = code
	return nil
}

func (m *captureMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type testServer struct {
	t      *testing.T
	h      http.Handler
	mailer *captureMailer
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.Database.Driver = "memory"
	cfg.JWT.Secret = "e2e-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Admin = config.AdminConfig{Username: "root", Email: "admin@example.com", Password: "admin-password"}
	cfg.Storage = config.StorageConfig{Type: "local", BasePath: t.TempDir(), BaseURL: "/uploads"}
	cfg.Upload.MaxSize = 64 * 1024
	cfg.Posts.PerPage = 2
	return cfg
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mailer := &captureMailer{}
	a, err := New(context.Background(), testConfig(t), WithMailer(mailer))
	require.NoError(t, err)
	return &testServer{t: t, h: a.Handler(), mailer: mailer}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.h.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(method, path, token string, fields map[string]string, file []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile("image", "picture.png")
		require.NoError(s.t, err)
		_, err = part.Write(file)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.h.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(username, email, password string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Username: username, Email: email, Password: password})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
}

func (s *testServer) login(email, password string) dto.LoginResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorCode {
	t.Helper()
	var body struct {
		Error struct {
			Code apperrors.ErrorCode `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error.Code
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 24, 12))
	for x := 0; x < 24; x++ {
		img.Set(x, x%12, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func postFields() map[string]string {
	return map[string]string{
		"title":       "First post",
		"description": "A description long enough",
		"category":    "travel",
	}
}

func TestAuthFlow_RegisterLoginResetPassword(t *testing.T) {
	s := newTestServer(t)
	s.register("alice", "alice@example.com", "password-1")

	w := s.do(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeInvalidCredentials, errorCode(t, w))

	w = s.do(http.MethodPost, "/api/auth/forgot-password", "", dto.ForgotPasswordRequest{Email: "nobody@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	unknown := w.Body.String()

	w = s.do(http.MethodPost, "/api/auth/forgot-password", "", dto.ForgotPasswordRequest{Email: "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, unknown, w.Body.String())

	code := s.mailer.code("alice@example.com")
	require.NotEmpty(t, code)

	w = s.do(http.MethodPut, "/api/auth/reset-password/"+code, "", dto.ResetPasswordRequest{Password: "password-2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reset dto.ResetPasswordResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reset))
	assert.NotEmpty(t, reset.Token)

	// код одноразовый
	w = s.do(http.MethodPut, "/api/auth/reset-password/"+code, "", dto.ResetPasswordRequest{Password: "password-3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeInvalidOrExpiredToken, errorCode(t, w))

	resp := s.login("alice@example.com", "password-2")
	assert.False(t, resp.IsAdmin)

	w = s.do(http.MethodPut, "/api/auth/update-password", resp.Token, dto.UpdatePasswordRequest{CurrentPassword: "password-2", NewPassword: "password-4"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.login("alice@example.com", "password-4")
}

func TestAuth_ValidationAndDuplicates(t *testing.T) {
	s := newTestServer(t)
	s.register("alice", "alice@example.com", "password-1")

	w := s.do(http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Username: "alice2", Email: "ALICE@example.com", Password: "password-1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Username: "bob", Email: "not-an-email", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidationFailed, errorCode(t, w))
}

func TestAuth_PasswordOverBcryptLimitIsValidationError(t *testing.T) {
	s := newTestServer(t)
	long := strings.Repeat("a", 80)

	w := s.do(http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: long})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidationFailed, errorCode(t, w))

	s.register("alice", "alice@example.com", "password-1")
	alice := s.login("alice@example.com", "password-1")

	w = s.do(http.MethodPut, "/api/auth/update-password", alice.Token, dto.UpdatePasswordRequest{CurrentPassword: "password-1", NewPassword: long})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidationFailed, errorCode(t, w))

	w = s.do(http.MethodPut, "/api/users/profile/"+alice.ID, alice.Token, dto.UpdateProfileRequest{Password: &long})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidationFailed, errorCode(t, w))

	w = s.do(http.MethodPost, "/api/auth/forgot-password", "", dto.ForgotPasswordRequest{Email: "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	code := s.mailer.code("alice@example.com")

	w = s.do(http.MethodPut, "/api/auth/reset-password/"+code, "", dto.ResetPasswordRequest{Password: long})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidationFailed, errorCode(t, w))

	// отклоненный запрос не тратит код
	w = s.do(http.MethodPut, "/api/auth/reset-password/"+code, "", dto.ResetPasswordRequest{Password: "password-2"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUsers_NonCanonicalIDIsInvalid(t *testing.T) {
	s := newTestServer(t)
	s.register("alice", "alice@example.com", "password-1")
	alice := s.login("alice@example.com", "password-1")
	bio := "hello"

	for _, id := range []string{strings.ToUpper(alice.ID), "urn:uuid:" + alice.ID} {
		w := s.do(http.MethodPut, "/api/users/profile/"+id, alice.Token, dto.UpdateProfileRequest{Bio: &bio})
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
		assert.Equal(t, apperrors.CodeValidationFailed, errorCode(t, w))

		w = s.do(http.MethodGet, "/api/users/profile/"+id, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}

	w := s.do(http.MethodPut, "/api/users/profile/"+alice.ID, alice.Token, dto.UpdateProfileRequest{Bio: &bio})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAuthorization_UnauthenticatedVsForbidden(t *testing.T) {
	s := newTestServer(t)
	s.register("alice", "alice@example.com", "password-1")
	s.register("bob", "bob@example.com", "password-1")
	alice := s.login("alice@example.com", "password-1")
	bob := s.login("bob@example.com", "password-1")

	w := s.upload(http.MethodPost, "/api/posts", "", postFields(), pngBytes(t))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.CodeUnauthenticated, errorCode(t, w))

	w = s.do(http.MethodGet, "/api/users/count", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/users/count", bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.CodeForbidden, errorCode(t, w))

	bio := "hacked"
	w = s.do(http.MethodPut, "/api/users/profile/"+alice.ID, bob.Token, dto.UpdateProfileRequest{Bio: &bio})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/users/profile/"+alice.ID, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := s.login("admin@example.com", "admin-password")
	require.True(t, admin.IsAdmin)
	w = s.do(http.MethodGet, "/api/users/count", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", strings.TrimSpace(w.Body.String()))
}

func TestPosts_LifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.register("alice", "alice@example.com", "password-1")
	s.register("bob", "bob@example.com", "password-1")
	alice := s.login("alice@example.com", "password-1")
	bob := s.login("bob@example.com", "password-1")

	w := s.upload(http.MethodPost, "/api/posts", alice.Token, postFields(), pngBytes(t))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, alice.ID, post.UserID)
	require.True(t, strings.HasPrefix(post.Image.URL, "/uploads/images/"), post.Image.URL)

	// картинка раздается локальным хранилищем
	w = s.do(http.MethodGet, post.Image.URL, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/posts/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view dto.PostView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.NotNil(t, view.Owner)
	assert.Equal(t, "alice", view.Owner.Username)

	title := "Stolen title"
	w = s.do(http.MethodPut, "/api/posts/"+post.ID, bob.Token, dto.UpdatePostRequest{Title: &title})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/posts/like/"+post.ID, bob.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var liked models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &liked))
	assert.Equal(t, []string{bob.ID}, liked.Likes)

	w = s.do(http.MethodPost, "/api/comments", bob.Token, dto.CreateCommentRequest{PostID: post.ID, Text: "  nice  "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var comment models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))
	assert.Equal(t, "nice", comment.Text)
	assert.Equal(t, "bob", comment.Username)

	w = s.do(http.MethodGet, "/api/posts?category=travel", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.PostView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	admin := s.login("admin@example.com", "admin-password")
	w = s.do(http.MethodDelete, "/api/posts/"+post.ID, admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), post.ID)

	w = s.do(http.MethodGet, "/api/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, post.Image.URL, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPosts_UploadErrors(t *testing.T) {
	s := newTestServer(t)
	s.register("alice", "alice@example.com", "password-1")
	alice := s.login("alice@example.com", "password-1")

	w := s.upload(http.MethodPost, "/api/posts", alice.Token, postFields(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload(http.MethodPost, "/api/posts", alice.Token, postFields(), bytes.Repeat([]byte{0x89}, 128*1024))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, apperrors.CodePayloadTooLarge, errorCode(t, w))

	w = s.upload(http.MethodPost, "/api/posts", alice.Token, postFields(), []byte("definitely not an image"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = s.upload(http.MethodPost, "/api/users/profile/profile-photo-upload", alice.Token, nil, pngBytes(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "/uploads/images/")
}

func TestRouting_InvalidIDAndNotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/posts/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/users/profile/123", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(t, w))
}

func TestServiceRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	s.do(http.MethodGet, "/api/categories", "", nil)
	w = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blog_api_responses_total")

	w = s.do(http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Blog API")
}

func TestHealth_StoreUnavailable(t *testing.T) {
	store := memrepo.NewStore()
	store.Ping = func(context.Context) error { return errors.New("connection refused") }

	a, err := New(context.Background(), testConfig(t), WithStore(store), WithMailer(&captureMailer{}))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}

func TestUploadsPath(t *testing.T) {
	assert.Equal(t, "/uploads", uploadsPath(""))
	assert.Equal(t, "/static/img", uploadsPath("http://localhost:8000/static/img"))
	assert.Equal(t, "/media", uploadsPath("/media"))
}
