package quota

import (
	"github.com/gin-gonic/gin"
	"github.com/stylescanner/server/internal/middleware"
	"github.com/stylescanner/server/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/usage", authMW, h.usage)
}

// GET /usage
func (h *Handler) usage(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	out := gin.H{}
	for _, f := range []Family{FamilyInsight, FamilyPresentation} {
		u, err := h.svc.Usage(c.Request.Context(), userID, f)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if u == nil {
			response.NotFoundMsg(c, "User not found")
			return
		}
		out[string(f)] = u
	}
	response.OK(c, out)
}
