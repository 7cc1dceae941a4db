package insight

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/stylescanner/server/internal/middleware"
	"github.com/stylescanner/server/internal/models"
	"github.com/stylescanner/server/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the insight endpoints. gate runs after authMW on generation only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc, gate ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{authMW}, gate...)
	rg.POST("/generate-insight", append(chain, h.generate)...)
	rg.GET("/myinsights", authMW, h.mine)

	g := rg.Group("/insights")
	g.GET("/:id", optionalAuthMW, h.get)
	g.PUT("/:id", authMW, h.update)
	g.DELETE("/:id", authMW, h.delete)
}

// POST /generate-insight
func (h *Handler) generate(c *gin.Context) {
	var dto GenerateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.Model != "" {
		c.Set(middleware.ContextKeyModel, dto.Model)
	}

	userID := middleware.CurrentUserID(c)
	doc, row, err := h.svc.Generate(middleware.Detached(c), userID, &dto)
	if err != nil {
		if errors.Is(err, errImageRequired) || errors.Is(err, errInvalidImage) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("insight generation failed", zap.String("user_id", userID), zap.Error(err))
		response.InternalError(c, err)
		return
	}
	doc["_id"] = row.ID
	response.Created(c, doc)
}

// GET /myinsights?search=
func (h *Handler) mine(c *gin.Context) {
	items, err := h.svc.ListByOwner(c.Request.Context(), middleware.CurrentUserID(c), c.Query("search"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponses(items))
}

// GET /insights/:id
func (h *Handler) get(c *gin.Context) {
	in, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if in == nil || (in.IsPrivate && in.UserID != middleware.CurrentUserID(c)) {
		response.NotFoundMsg(c, errInsightNotFound.Error())
		return
	}
	response.OK(c, toResponse(in))
}

// PUT /insights/:id
func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	in, ok := h.loadOwned(c)
	if !ok {
		return
	}
	in, err := h.svc.Update(c.Request.Context(), in, &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponse(in))
}

// DELETE /insights/:id
func (h *Handler) delete(c *gin.Context) {
	in, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), in.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) loadOwned(c *gin.Context) (*models.Insight, bool) {
	in, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return nil, false
	}
	if in == nil {
		response.NotFoundMsg(c, errInsightNotFound.Error())
		return nil, false
	}
	if in.UserID != middleware.CurrentUserID(c) {
		response.ForbiddenMsg(c, "Access denied")
		return nil, false
	}
	return in, true
}
