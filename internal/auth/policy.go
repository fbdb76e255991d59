package auth

import (
	"context"

	"blog_backend/pkg/apperrors"
)

// Identity - данные аутентифицированного пользователя из токена
type Identity struct {
	UserID  string
	IsAdmin bool
}

// Policy - правило доступа к маршруту или ресурсу
type Policy int

const (
	Public Policy = iota
	AuthenticatedOnly
	OwnerOnly
	OwnerOrAdmin
	AdminOnly
)

func (p Policy) String() string {
	switch p {
	case Public:
		return "public"
	case AuthenticatedOnly:
		return "authenticated"
	case OwnerOnly:
		return "owner"
	case OwnerOrAdmin:
		return "owner_or_admin"
	case AdminOnly:
		return "admin"
	default:
		return "unknown"
	}
}

// Authorize проверяет политику для личности id и владельца ресурса ownerID.
// id == nil означает анонимный запрос.
func Authorize(p Policy, id *Identity, ownerID string) error {
	if p == Public {
		return nil
	}
	if id == nil || id.UserID == "" {
		return apperrors.ErrUnauthenticated
	}

	switch p {
	case AuthenticatedOnly:
		return nil
	case OwnerOnly:
		if id.UserID == ownerID {
			return nil
		}
		return apperrors.ErrOwnerOnly
	case OwnerOrAdmin:
		if id.UserID == ownerID || id.IsAdmin {
			return nil
		}
		return apperrors.ErrOwnerOrAdmin
	case AdminOnly:
		if id.IsAdmin {
			return nil
		}
		return apperrors.ErrAdminOnly
	default:
		return apperrors.ErrForbidden
	}
}

type identityKey struct{}

// WithIdentity сохраняет личность в context запроса
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext извлекает личность из context
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
