package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NewResetCode генерирует случайный код сброса пароля из n байт (в hex)
// и его SHA-256 хеш. В базе хранится только хеш, код уходит пользователю.
func NewResetCode(n int) (code string, hash string, err error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	code = hex.EncodeToString(buf)
	return code, HashResetCode(code), nil
}

// HashResetCode возвращает hex(sha256(code))
func HashResetCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
