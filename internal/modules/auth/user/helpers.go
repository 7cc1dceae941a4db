package user

import (
	"encoding/json"

	"github.com/stylescanner/server/internal/models"
)

func toResponse(u *models.User) *userResponse {
	return &userResponse{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		ProfilePicture:     u.ProfilePicture,
		SubscriptionStatus: u.SubscriptionStatus,
		Preferences:        jsonOrEmpty(u.Preferences),
		FashionAIProps:     jsonOrEmpty(u.FashionAIProps),
		EmailVerified:      u.EmailVerified,
		IsAdmin:            u.IsAdmin,
		AIRequestCount:     u.AIRequestCount,
		LastAIRequestTime:  u.LastAIRequestTime,
		CreatedAt:          u.CreatedAt,
	}
}

func jsonOrEmpty(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	return json.RawMessage(raw)
}

// present reports whether an optional JSON field was sent with a non-null value.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
