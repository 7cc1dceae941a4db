package quota

import "errors"

// Family groups generation endpoints that share a daily ceiling.
type Family string

const (
	FamilyInsight      Family = "insight"
	FamilyPresentation Family = "presentation"
)

const dayLayout = "2006-01-02"

var (
	ErrLimitReached = errors.New("Daily AI request limit reached, please upgrade")
	errUserNotFound = errors.New("user not found")
)

// Usage is a user's counter as of the current day.
type Usage struct {
	Day       string `json:"day"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	Unlimited bool   `json:"unlimited"`
}
