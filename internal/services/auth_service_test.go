package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"blog_backend/internal/auth"
	"blog_backend/internal/models"
	"blog_backend/internal/repositories"
	"blog_backend/internal/repositories/memrepo"
	"blog_backend/internal/services/dto"
	"blog_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, to, username, code string, ttl time.Duration) error {
	args := m.Called(ctx, to, username, code, ttl)
	return args.Error(0)
}

type authFixture struct {
	store  *repositories.Store
	svc    AuthService
	mailer *mockMailer
	tokens *auth.TokenManager
	now    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		store:  memrepo.NewStore(),
		mailer: &mockMailer{},
		tokens: auth.NewTokenManager("test-secret", time.Hour),
		now:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewAuthService(f.store.Users, auth.NewBcryptHasher(bcrypt.MinCost), f.tokens, f.mailer, AuthOptions{
		ResetTTL: 10 * time.Minute,
		Now:      func() time.Time { return f.now },
	})
	return f
}

func (f *authFixture) register(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, &dto.RegisterRequest{Username: username, Email: email, Password: password}))
	u, err := f.store.Users.FindByEmail(ctx, models.NormalizeEmail(email))
	require.NoError(t, err)
	return u
}

// requestCode запускает forgot-password и возвращает код, ушедший в письме
func (f *authFixture) requestCode(t *testing.T, email string) string {
	t.Helper()
	var code string
	f.mailer.On("SendPasswordReset", mock.Anything, email, mock.Anything, mock.AnythingOfType("string"), 10*time.Minute).
		Run(func(args mock.Arguments) { code = args.String(3) }).
		Return(nil).Once()

	resp, err := f.svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: email})
	require.NoError(t, err)
	assert.Equal(t, forgotPasswordMessage, resp.Message)
	require.NotEmpty(t, code)
	return code
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	u := f.register(t, " Alice ", "Alice@Example.com", "password123")
	assert.Equal(t, "Alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, models.DefaultProfilePhotoURL, u.ProfilePhoto.URL)

	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "ALICE@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.ID)
	assert.False(t, resp.IsAdmin)

	id, err := f.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "alice@example.com", "password123")

	err := f.svc.Register(context.Background(), &dto.RegisterRequest{Username: "other", Email: "ALICE@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "alice@example.com", "password123")
	ctx := context.Background()

	_, errWrong := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	_, errUnknown := f.svc.Login(ctx, &dto.LoginRequest{Email: "bob@example.com", Password: "password123"})

	assert.ErrorIs(t, errWrong, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, apperrors.ErrInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestAuthService_ForgotPasswordUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
	assert.Equal(t, forgotPasswordMessage, resp.Message)
	f.mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_ForgotPasswordStoresOnlyHash(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice", "alice@example.com", "password123")

	code := f.requestCode(t, "alice@example.com")
	assert.Len(t, code, 6)

	stored, err := f.store.Users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, stored.HasPendingReset())
	assert.Equal(t, auth.HashResetCode(code), *stored.PasswordResetTokenHash)
	assert.NotEqual(t, code, *stored.PasswordResetTokenHash)
	assert.Equal(t, f.now.Add(10*time.Minute), *stored.PasswordResetTokenExpiresAt)
}

func TestAuthService_ResetPasswordSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice", "alice@example.com", "password123")
	ctx := context.Background()

	code := f.requestCode(t, "alice@example.com")

	resp, err := f.svc.ResetPassword(ctx, code, &dto.ResetPasswordRequest{Password: "new-password"})
	require.NoError(t, err)
	id, err := f.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)

	_, err = f.svc.ResetPassword(ctx, code, &dto.ResetPasswordRequest{Password: "third-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "new-password"})
	assert.NoError(t, err)

	stored, err := f.store.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasPendingReset())
}

func TestAuthService_ResetPasswordExpiredIsClearedLazily(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice", "alice@example.com", "password123")
	ctx := context.Background()

	code := f.requestCode(t, "alice@example.com")
	f.now = f.now.Add(10 * time.Minute)

	_, err := f.svc.ResetPassword(ctx, code, &dto.ResetPasswordRequest{Password: "new-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	stored, err := f.store.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasPendingReset())

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	assert.NoError(t, err)
}

func TestAuthService_ResetPasswordWrongCodeKeepsPending(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "alice@example.com", "password123")
	ctx := context.Background()

	code := f.requestCode(t, "alice@example.com")

	_, err := f.svc.ResetPassword(ctx, "zzzzzz", &dto.ResetPasswordRequest{Password: "new-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	// верный код после ошибки все еще работает, регистр и пробелы не важны
	_, err = f.svc.ResetPassword(ctx, "  "+strings.ToUpper(code)+" ", &dto.ResetPasswordRequest{Password: "new-password"})
	assert.NoError(t, err)
}

func TestAuthService_NewCodeReplacesOld(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "alice@example.com", "password123")
	ctx := context.Background()

	first := f.requestCode(t, "alice@example.com")
	second := f.requestCode(t, "alice@example.com")
	if first == second {
		t.Skip("random codes collided")
	}

	_, err := f.svc.ResetPassword(ctx, first, &dto.ResetPasswordRequest{Password: "new-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)
	_, err = f.svc.ResetPassword(ctx, second, &dto.ResetPasswordRequest{Password: "new-password"})
	assert.NoError(t, err)
}

// withCodes подменяет генератор кодов заданной последовательностью
func (f *authFixture) withCodes(codes ...string) {
	next := func(int) (string, string, error) {
		if len(codes) == 0 {
			return "", "", errors.New("no more codes")
		}
		code := codes[0]
		codes = codes[1:]
		return code, auth.HashResetCode(code), nil
	}
	f.svc = NewAuthService(f.store.Users, auth.NewBcryptHasher(bcrypt.MinCost), f.tokens, f.mailer, AuthOptions{
		ResetTTL: 10 * time.Minute,
		Now:      func() time.Time { return f.now },
		NewCode:  next,
	})
}

func TestAuthService_ForgotPasswordRegeneratesTakenCode(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.register(t, "alice", "alice@example.com", "password123")
	bob := f.register(t, "bob", "bob@example.com", "password123")
	ctx := context.Background()

	f.withCodes("aaaaaa", "aaaaaa", "bbbbbb")
	assert.Equal(t, "aaaaaa", f.requestCode(t, "alice@example.com"))
	assert.Equal(t, "bbbbbb", f.requestCode(t, "bob@example.com"))

	resp, err := f.svc.ResetPassword(ctx, "aaaaaa", &dto.ResetPasswordRequest{Password: "alice-new-pass"})
	require.NoError(t, err)
	id, err := f.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, id.UserID)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "bob@example.com", Password: "password123"})
	assert.NoError(t, err)

	resp, err = f.svc.ResetPassword(ctx, "bbbbbb", &dto.ResetPasswordRequest{Password: "bob-new-pass"})
	require.NoError(t, err)
	id, err = f.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, id.UserID)
}

func TestAuthService_ForgotPasswordGivesUpOnPersistentCollision(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "alice@example.com", "password123")
	bob := f.register(t, "bob", "bob@example.com", "password123")
	ctx := context.Background()

	f.withCodes("aaaaaa")
	f.requestCode(t, "alice@example.com")

	codes := make([]string, resetCodeAttempts)
	for i := range codes {
		codes[i] = "aaaaaa"
	}
	f.withCodes(codes...)

	_, err := f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "bob@example.com"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInternalError, appErr.Code)
	f.mailer.AssertNumberOfCalls(t, "SendPasswordReset", 1)

	got, err := f.store.Users.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, got.HasPendingReset())
}

func TestAuthService_ForgotPasswordDeliveryFailureRollsBack(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice", "alice@example.com", "password123")
	ctx := context.Background()

	f.mailer.On("SendPasswordReset", mock.Anything, "alice@example.com", "alice", mock.Anything, 10*time.Minute).
		Return(errors.New("smtp down")).Once()

	_, err := f.svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "alice@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrDeliveryFailure)
	f.mailer.AssertExpectations(t)

	stored, err := f.store.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasPendingReset())
}

func TestAuthService_UpdatePassword(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice", "alice@example.com", "password123")
	ctx := context.Background()
	id := auth.Identity{UserID: u.ID}

	err := f.svc.UpdatePassword(ctx, id, &dto.UpdatePasswordRequest{CurrentPassword: "nope", NewPassword: "new-password"})
	assert.ErrorIs(t, err, apperrors.ErrWrongCurrentPassword)

	code := f.requestCode(t, "alice@example.com")
	require.NoError(t, f.svc.UpdatePassword(ctx, id, &dto.UpdatePasswordRequest{CurrentPassword: "password123", NewPassword: "new-password"}))

	// смена пароля аннулирует выданный код
	_, err = f.svc.ResetPassword(ctx, code, &dto.ResetPasswordRequest{Password: "other-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "new-password"})
	assert.NoError(t, err)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	created, err := f.svc.EnsureAdmin(ctx, "", "Admin@Example.com", "admin-password")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.svc.EnsureAdmin(ctx, "root", "admin@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)

	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "admin@example.com", Password: "admin-password"})
	require.NoError(t, err)
	assert.True(t, resp.IsAdmin)
}
