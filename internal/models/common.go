package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultProfilePhotoURL - аватар нового пользователя
const DefaultProfilePhotoURL = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_1280.png"

type BaseModel struct {
	ID        string    `json:"_id" bson:"_id" gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Prepare заполняет ID и метки времени перед вставкой
func (m *BaseModel) Prepare(now time.Time) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

// Image - картинка в хранилище: публичный URL и ключ объекта для удаления
type Image struct {
	URL      string `json:"url" bson:"url"`
	PublicID string `json:"publicId" bson:"publicId"`
}

// HasObject сообщает, лежит ли картинка в нашем хранилище
func (i Image) HasObject() bool {
	return i.PublicID != ""
}
