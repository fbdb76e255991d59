package auth

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"blog_backend/pkg/apperrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("super-secret", time.Hour)

	tok, err := m.Issue("user-123", true)
	require.NoError(t, err)

	id, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "user-123", IsAdmin: true}, id)
}

func TestTokenManager_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", time.Hour).WithClock(func() time.Time { return issuedAt })

	tok, err := m.Issue("u1", false)
	require.NoError(t, err)

	// до истечения - валиден
	_, err = m.WithClock(func() time.Time { return issuedAt.Add(59 * time.Minute) }).Verify(tok)
	require.NoError(t, err)

	// после истечения - нет
	_, err = m.WithClock(func() time.Time { return issuedAt.Add(time.Hour + time.Second) }).Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager("right-secret", time.Hour).Issue("u2", false)
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Malformed(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("k", time.Hour)
	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		_, err := m.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := "secret"
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u3",
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = NewTokenManager(secret, time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RequiresExpiryAndUser(t *testing.T) {
	t.Parallel()

	secret := "secret"
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u4"}).SignedString([]byte(secret))
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	m := NewTokenManager(secret, time.Hour)
	_, err = m.Verify(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.Verify(noUser)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(4)

	digest, err := h.Hash("password-one")
	require.NoError(t, err)

	ok, err := h.Verify("password-one", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("password-two", digest)
	require.NoError(t, err)
	assert.False(t, ok)

	// свежая соль при каждом вызове
	other, err := h.Hash("password-one")
	require.NoError(t, err)
	assert.NotEqual(t, digest, other)
}

func TestBcryptHasher_MalformedDigestIsError(t *testing.T) {
	t.Parallel()

	ok, err := NewBcryptHasher(4).Verify("password", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestNewResetCode(t *testing.T) {
	t.Parallel()

	code, hash, err := NewResetCode(3)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{6}$`), code)
	assert.Len(t, hash, 64)
	assert.Equal(t, HashResetCode(code), hash)
	assert.NotEqual(t, code, hash)

	// известный вектор sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashResetCode("abc"))
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	alice := &Identity{UserID: "alice"}
	admin := &Identity{UserID: "root", IsAdmin: true}

	tests := []struct {
		name   string
		policy Policy
		id     *Identity
		owner  string
		want   error
	}{
		{"public anonymous", Public, nil, "", nil},
		{"authenticated anonymous", AuthenticatedOnly, nil, "", apperrors.ErrUnauthenticated},
		{"authenticated ok", AuthenticatedOnly, alice, "", nil},
		{"owner self", OwnerOnly, alice, "alice", nil},
		{"owner other", OwnerOnly, alice, "bob", apperrors.ErrOwnerOnly},
		{"owner admin still forbidden", OwnerOnly, admin, "bob", apperrors.ErrOwnerOnly},
		{"owner-or-admin self", OwnerOrAdmin, alice, "alice", nil},
		{"owner-or-admin other", OwnerOrAdmin, alice, "bob", apperrors.ErrOwnerOrAdmin},
		{"owner-or-admin admin", OwnerOrAdmin, admin, "bob", nil},
		{"admin ok", AdminOnly, admin, "", nil},
		{"admin non-admin", AdminOnly, alice, "", apperrors.ErrAdminOnly},
		{"admin anonymous", AdminOnly, nil, "", apperrors.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.policy, tt.id, tt.owner)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
