package quota

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stylescanner/server/internal/middleware"
	"github.com/stylescanner/server/internal/pkg/response"
	"go.uber.org/zap"
)

// Gate must run after middleware.Auth.
func (s *Service) Gate(family Family, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)
		if userID == "" {
			response.Unauthorized(c)
			return
		}
		err := s.Consume(middleware.Detached(c), userID, family)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, ErrLimitReached):
			response.Error(c, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, errUserNotFound):
			response.ForbiddenMsg(c, "Access denied")
		default:
			logger.Error("quota check failed", zap.String("user_id", userID), zap.Error(err))
			response.InternalError(c, err)
		}
	}
}
