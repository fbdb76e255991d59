package models

type Post struct {
	BaseModel   `bson:",inline"`
	Title       string   `json:"title" bson:"title" gorm:"size:200;not null"`
	Description string   `json:"description" bson:"description" gorm:"type:text;not null"`
	Category    string   `json:"category" bson:"category" gorm:"size:100;index;not null"`
	UserID      string   `json:"user" bson:"user" gorm:"type:varchar(36);index;not null"`
	Image       Image    `json:"image" bson:"image" gorm:"embedded;embeddedPrefix:image_"`
	Likes       []string `json:"likes" bson:"likes" gorm:"type:text;serializer:json"`
}

// LikedBy - есть ли userID среди лайкнувших
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

type PostUpdate struct {
	Title       *string
	Description *string
	Category    *string
}

// PostFilter - параметры выборки постов; Page <= 0 отключает пагинацию
type PostFilter struct {
	Category string
	UserID   string
	Page     int
	PerPage  int
}
