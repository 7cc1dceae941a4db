package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Detached returns a context that keeps the request's values but is not
// cancelled when the client disconnects.
func Detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
