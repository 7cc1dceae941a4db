package admin

import (
	"errors"

	"github.com/stylescanner/server/internal/models"
)

// growthDays is the window covered by the dashboard growth series.
const growthDays = 30

var (
	errUserNotFound         = errors.New("User not found")
	errFeedbackNotFound     = errors.New("Feedback not found")
	errInsightNotFound      = errors.New("Insight not found")
	errPresentationNotFound = errors.New("Presentation not found")
	errInvalidSubscription  = errors.New("Invalid subscription status")
	errInvalidPrivacy       = errors.New("Invalid private status")
)

type SubscriptionDTO struct {
	SubscriptionStatus models.SubscriptionStatus `json:"subscriptionStatus"`
}

type PrivacyDTO struct {
	IsPrivate *bool `json:"isPrivate"`
}

type DayCount struct {
	Day   string `json:"_id"`
	Count int64  `json:"count"`
}

type ModelCount struct {
	Model string `json:"_id"`
	Count int64  `json:"count"`
}

type Stats struct {
	TotalUsers     int64  `json:"totalUsers"`
	PremiumUsers   int64  `json:"premiumUsers"`
	TrialingUsers  int64  `json:"trialingUsers"`
	ConversionRate string `json:"conversionRate"`
}

type ArtifactStats struct {
	TotalInsights      int64      `json:"totalInsights"`
	TotalPresentations int64      `json:"totalPresentations"`
	TotalFeedbacks     int64      `json:"totalFeedbacks"`
	InsightGrowth      []DayCount `json:"insightGrowth"`
}

type Dashboard struct {
	Stats         Stats         `json:"stats"`
	UserGrowth    []DayCount    `json:"userGrowth"`
	InsightsStats ArtifactStats `json:"insightsStats"`
}
