package presentation

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/stylescanner/server/internal/models"
)

// slugify lowercases title and joins runs of letters and digits with dashes.
func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if runes := []rune(slug); len(runes) > maxSlugLength {
		slug = strings.TrimRight(string(runes[:maxSlugLength]), "-")
	}
	if slug == "" {
		slug = "presentation"
	}
	return slug
}

func randomSuffix() string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func clampSlides(n *int) int {
	if n == nil {
		return defaultSlides
	}
	switch {
	case *n < minSlides:
		return minSlides
	case *n > maxSlides:
		return maxSlides
	}
	return *n
}

func toResponse(p *models.Presentation) presentationResponse {
	slides := json.RawMessage(p.Slides)
	if len(slides) == 0 {
		slides = json.RawMessage("[]")
	}
	return presentationResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Topic:        p.Topic,
		Summary:      p.Summary,
		Slides:       slides,
		Benefits:     p.Benefits,
		ImageSource:  p.ImageSource,
		DeepResearch: p.DeepResearch,
		IsPrivate:    p.IsPrivate,
		Model:        p.Model,
		UserID:       p.UserID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toResponses(items []models.Presentation) []presentationResponse {
	out := make([]presentationResponse, len(items))
	for i := range items {
		out[i] = toResponse(&items[i])
	}
	return out
}
