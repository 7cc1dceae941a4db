package models

import "gorm.io/datatypes"

// Presentation is a persisted generated slide deck.
type Presentation struct {
	Base
	Title        string         `json:"title"          gorm:"size:255;not null"`
	Slug         string         `json:"slug"           gorm:"size:191;uniqueIndex"`
	Topic        string         `json:"topic"          gorm:"type:text"`
	Summary      string         `json:"summary"        gorm:"type:text"`
	Slides       datatypes.JSON `json:"slides"`
	Benefits     StringArray    `json:"benefits"       gorm:"type:text"`
	ImageSource  string         `json:"imageSource"    gorm:"size:32"`
	DeepResearch bool           `json:"deepResearch"   gorm:"not null;default:false"`
	Temperature  float64        `json:"temperature"`
	IsPrivate    bool           `json:"isPrivate"      gorm:"not null;default:false"`
	Model        string         `json:"model"          gorm:"size:64;index"`
	UserID       string         `json:"userId"         gorm:"type:varchar(36);index;not null"`
	User         *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Presentation) TableName() string { return "presentations" }
