package models

import (
	"strings"
	"time"
)

type User struct {
	BaseModel         `bson:",inline"`
	Username          string `json:"username" bson:"username" gorm:"size:100;not null"`
	Email             string `json:"email" bson:"email" gorm:"size:100;uniqueIndex;not null"`
	PasswordHash      string `json:"-" bson:"password" gorm:"not null"`
	ProfilePhoto      Image  `json:"profilePhoto" bson:"profilePhoto" gorm:"embedded;embeddedPrefix:profile_photo_"`
	Bio               string `json:"bio" bson:"bio"`
	IsAdmin           bool   `json:"isAdmin" bson:"isAdmin" gorm:"not null"`
	IsAccountVerified bool   `json:"isAccountVerified" bson:"isAccountVerified" gorm:"not null"`

	// Pending password reset: sha256 кода и срок действия (оба пусты или оба заданы)
	PasswordResetTokenHash      *string    `json:"-" bson:"passwordResetToken,omitempty" gorm:"size:64;uniqueIndex"`
	PasswordResetTokenExpiresAt *time.Time `json:"-" bson:"passwordResetTokenExpires,omitempty"`
}

// NormalizeEmail приводит email к виду, по которому ищется пользователь
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasPendingReset - есть ли неиспользованный код сброса пароля
func (u *User) HasPendingReset() bool {
	return u.PasswordResetTokenHash != nil && u.PasswordResetTokenExpiresAt != nil
}

// ResetExpired - истек ли код сброса на момент now
func (u *User) ResetExpired(now time.Time) bool {
	return u.PasswordResetTokenExpiresAt == nil || !now.Before(*u.PasswordResetTokenExpiresAt)
}

// UserUpdate - самостоятельное обновление профиля. Флаг isAdmin сюда не входит.
type UserUpdate struct {
	Username     *string
	Bio          *string
	PasswordHash *string
}
