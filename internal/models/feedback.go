package models

// Feedback is a free-form message left from the app; anonymous when UserID is nil.
type Feedback struct {
	Base
	UserID  *string `json:"userId"         gorm:"type:varchar(36);index"`
	Message string  `json:"message"        gorm:"type:text;not null"`
	Type    string  `json:"type"           gorm:"size:32"`
	User    *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Feedback) TableName() string { return "feedbacks" }
