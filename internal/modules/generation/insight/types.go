package insight

import (
	"errors"
	"time"

	"github.com/stylescanner/server/internal/models"
)

const defaultTitle = "Fashion Insight"

var (
	errImageRequired   = errors.New("Image source is required")
	errInvalidImage    = errors.New("Invalid image data")
	errInsightNotFound = errors.New("Insight not found")
)

type GenerateDTO struct {
	ImageSource      string   `json:"imageSource"`
	StylePreferences string   `json:"stylePreferences"`
	Model            string   `json:"model"`
	Temperature      *float64 `json:"temperature"`
}

type UpdateDTO struct {
	Title     *string `json:"title"`
	IsPrivate *bool   `json:"isPrivate"`
}

type insightResponse struct {
	ID              string             `json:"_id"`
	Title           string             `json:"title"`
	Photo           string             `json:"photo"`
	Recommendations models.StringArray `json:"recommendations"`
	Benefits        models.StringArray `json:"benefits"`
	Analysis        any                `json:"analysis"`
	StyleScore      float64            `json:"styleScore"`
	IsPrivate       bool               `json:"isPrivate"`
	Model           string             `json:"model"`
	UserID          string             `json:"userId"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}
