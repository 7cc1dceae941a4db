package presentation

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/stylescanner/server/internal/models"
)

const (
	defaultSlides = 10
	minSlides     = 1
	maxSlides     = 30
	maxSlugLength = 80
)

var (
	errTopicRequired        = errors.New("Topic is required")
	errPresentationNotFound = errors.New("Presentation not found")
	errInvalidSlides        = errors.New("slides must be a JSON array")
)

type GenerateDTO struct {
	Topic        string   `json:"topic"`
	NumSlides    *int     `json:"numSlides"`
	Model        string   `json:"model"`
	Temperature  *float64 `json:"temperature"`
	DeepResearch bool     `json:"deepResearch"`
	ImageSource  string   `json:"imageSource"`
}

type UpdateDTO struct {
	Title     *string         `json:"title"`
	Summary   *string         `json:"summary"`
	IsPrivate *bool           `json:"isPrivate"`
	Slides    json.RawMessage `json:"slides"`
}

type presentationResponse struct {
	ID           string             `json:"_id"`
	Title        string             `json:"title"`
	Slug         string             `json:"slug"`
	Topic        string             `json:"topic"`
	Summary      string             `json:"summary"`
	Slides       json.RawMessage    `json:"slides"`
	Benefits     models.StringArray `json:"benefits"`
	ImageSource  string             `json:"imageSource"`
	DeepResearch bool               `json:"deepResearch"`
	IsPrivate    bool               `json:"isPrivate"`
	Model        string             `json:"model"`
	UserID       string             `json:"userId"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}
