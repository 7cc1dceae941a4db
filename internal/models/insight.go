package models

import "gorm.io/datatypes"

// Insight is a persisted outfit analysis.
type Insight struct {
	Base
	Title           string         `json:"title"           gorm:"size:255;not null"`
	Photo           string         `json:"photo"           gorm:"size:16777216"`
	Recommendations StringArray    `json:"recommendations" gorm:"type:text"`
	Benefits        StringArray    `json:"benefits"        gorm:"type:text"`
	Analysis        datatypes.JSON `json:"analysis"`
	StyleScore      float64        `json:"styleScore"      gorm:"not null;default:0"`
	IsPrivate       bool           `json:"isPrivate"       gorm:"not null;default:false"`
	Model           string         `json:"model"           gorm:"size:64;index"`
	UserID          string         `json:"userId"          gorm:"type:varchar(36);index;not null"`
	User            *User          `json:"user,omitempty"  gorm:"foreignKey:UserID"`
}

func (Insight) TableName() string { return "insights" }
