package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stylescanner/server/internal/models"
	"github.com/stylescanner/server/internal/pkg/jwt"
	"github.com/stylescanner/server/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "user"
)

var errTokenRequired = errors.New("token is required")

// Auth rejects requests without a token (401) or with an invalid one (403).
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c)
			return
		}
		userID, err := ValidateToken(token)
		if err != nil {
			response.ForbiddenMsg(c, "Invalid token")
			return
		}
		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// OptionalAuth sets the user ID if a valid token is present, but does not block the request.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := ValidateToken(extractToken(c)); err == nil {
			c.Set(ContextKeyUserID, userID)
		}
		c.Next()
	}
}

// AdminOnly must run after Auth. It loads the caller and requires the admin flag.
func AdminOnly(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := LoadCurrentUser(c, db)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.ForbiddenMsg(c, "Access denied")
				return
			}
			response.InternalError(c, err)
			return
		}
		if !user.IsAdmin {
			response.ForbiddenMsg(c, "Admin access required")
			return
		}
		c.Next()
	}
}

// ValidateToken validates a JWT and returns the authenticated user id.
func ValidateToken(rawToken string) (string, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return "", errTokenRequired
	}
	claims, err := jwt.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if the request has a valid auth token.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

// LoadCurrentUser fetches the authenticated user once per request.
func LoadCurrentUser(c *gin.Context, db *gorm.DB) (*models.User, error) {
	if v, ok := c.Get(ContextKeyUser); ok {
		if u, ok := v.(*models.User); ok {
			return u, nil
		}
	}
	id := CurrentUserID(c)
	if id == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var u models.User
	if err := db.WithContext(c.Request.Context()).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	c.Set(ContextKeyUser, &u)
	return &u, nil
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
