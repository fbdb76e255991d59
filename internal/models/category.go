package models

type Category struct {
	BaseModel `bson:",inline"`
	UserID    string `json:"user" bson:"user" gorm:"type:varchar(36);index;not null"`
	Title     string `json:"title" bson:"title" gorm:"size:100;not null"`
}
