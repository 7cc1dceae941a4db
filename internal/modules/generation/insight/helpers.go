package insight

import (
	"encoding/json"

	"github.com/stylescanner/server/internal/models"
)

func toResponse(in *models.Insight) insightResponse {
	var analysis any = map[string]any{}
	if len(in.Analysis) > 0 {
		if err := json.Unmarshal(in.Analysis, &analysis); err != nil {
			analysis = map[string]any{}
		}
	}
	return insightResponse{
		ID:              in.ID,
		Title:           in.Title,
		Photo:           in.Photo,
		Recommendations: in.Recommendations,
		Benefits:        in.Benefits,
		Analysis:        analysis,
		StyleScore:      in.StyleScore,
		IsPrivate:       in.IsPrivate,
		Model:           in.Model,
		UserID:          in.UserID,
		CreatedAt:       in.CreatedAt,
		UpdatedAt:       in.UpdatedAt,
	}
}

func toResponses(items []models.Insight) []insightResponse {
	out := make([]insightResponse, len(items))
	for i := range items {
		out[i] = toResponse(&items[i])
	}
	return out
}

// styleScore reads a numeric score from the model document, tolerating strings like "82".
func styleScore(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		var f float64
		if err := json.Unmarshal([]byte(t), &f); err == nil {
			return f
		}
	}
	return 0
}
