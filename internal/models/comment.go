package models

type Comment struct {
	BaseModel `bson:",inline"`
	PostID    string `json:"postId" bson:"postId" gorm:"type:varchar(36);index;not null"`
	UserID    string `json:"user" bson:"user" gorm:"type:varchar(36);index;not null"`
	Text      string `json:"text" bson:"text" gorm:"type:text;not null"`
	Username  string `json:"username" bson:"username" gorm:"size:100;not null"`
}
