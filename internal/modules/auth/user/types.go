package user

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/stylescanner/server/internal/models"
)

type RegisterDTO struct {
	Email     string `json:"email"     binding:"required,email"`
	Password  string `json:"password"  binding:"required,min=6"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginDTO struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileDTO struct {
	FirstName      *string         `json:"firstName"`
	LastName       *string         `json:"lastName"`
	ProfilePicture *string         `json:"profilePicture"`
	Preferences    json.RawMessage `json:"preferences"`
	FashionAIProps json.RawMessage `json:"fashionAIProps"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type userResponse struct {
	ID                 string                    `json:"_id"`
	Email              string                    `json:"email"`
	FirstName          string                    `json:"firstName"`
	LastName           string                    `json:"lastName"`
	ProfilePicture     string                    `json:"profilePicture"`
	SubscriptionStatus models.SubscriptionStatus `json:"subscriptionStatus"`
	Preferences        json.RawMessage           `json:"preferences"`
	FashionAIProps     json.RawMessage           `json:"fashionAIProps"`
	EmailVerified      bool                      `json:"emailVerified"`
	IsAdmin            bool                      `json:"isAdmin"`
	AIRequestCount     int                       `json:"aiRequestCount"`
	LastAIRequestTime  *time.Time                `json:"lastAiRequestTime"`
	CreatedAt          time.Time                 `json:"createdAt"`
}

type authResponse struct {
	Token string        `json:"token"`
	User  *userResponse `json:"user"`
}

var (
	errUserExists         = errors.New("User already exists")
	errInvalidCredentials = errors.New("Invalid email or password")
	errWrongPassword      = errors.New("Current password is incorrect")
	errPasswordSameAsOld  = errors.New("New password must differ from the current one")
	errInvalidJSON        = errors.New("preferences must be valid JSON")
)
