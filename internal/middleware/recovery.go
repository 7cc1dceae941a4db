package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stylescanner/server/internal/pkg/response"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a logged 500 so the process keeps serving.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		response.Error(c, http.StatusInternalServerError, fmt.Sprint(recovered))
	})
}
