package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubscriptionStatus mirrors the Stripe subscription lifecycle.
type SubscriptionStatus string

const (
	SubscriptionActive            SubscriptionStatus = "active"
	SubscriptionFree              SubscriptionStatus = "free"
	SubscriptionTrialing          SubscriptionStatus = "trialing"
	SubscriptionPastDue           SubscriptionStatus = "past_due"
	SubscriptionCanceled          SubscriptionStatus = "canceled"
	SubscriptionIncompleteExpired SubscriptionStatus = "incomplete_expired"
)

// SubscriptionStatuses lists every accepted status.
var SubscriptionStatuses = []SubscriptionStatus{
	SubscriptionActive,
	SubscriptionFree,
	SubscriptionTrialing,
	SubscriptionPastDue,
	SubscriptionCanceled,
	SubscriptionIncompleteExpired,
}

func (s SubscriptionStatus) Valid() bool {
	for _, v := range SubscriptionStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Paying reports whether the status lifts the daily generation quota.
func (s SubscriptionStatus) Paying() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing
}

// RateState is the per-day generation counter embedded in the user row.
type RateState struct {
	LastAIRequestTime *time.Time `json:"lastAiRequestTime"`
	LastAIRequestDay  string     `json:"-"              gorm:"size:10"`
	AIRequestCount    int        `json:"aiRequestCount" gorm:"not null;default:0"`
}

// User is an account holder.
type User struct {
	Base
	Email              string             `json:"email"              gorm:"size:191;uniqueIndex;not null"`
	Password           string             `json:"-"                  gorm:"not null"`
	FirstName          string             `json:"firstName"          gorm:"size:128"`
	LastName           string             `json:"lastName"           gorm:"size:128"`
	ProfilePicture     string             `json:"profilePicture"     gorm:"type:text"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus" gorm:"size:32;not null;default:free;index"`
	SubscriptionID     string             `json:"subscriptionId"     gorm:"size:191"`
	Preferences        datatypes.JSON     `json:"preferences"`
	FashionAIProps     datatypes.JSON     `json:"fashionAIProps"`
	EmailVerified      bool               `json:"emailVerified"      gorm:"not null;default:false"`
	IsAdmin            bool               `json:"isAdmin"            gorm:"not null;default:false"`
	RateState          `gorm:"embedded"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	if u.SubscriptionStatus == "" {
		u.SubscriptionStatus = SubscriptionFree
	}
	return nil
}

// NormalizeEmail lowercases and trims an address for lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
