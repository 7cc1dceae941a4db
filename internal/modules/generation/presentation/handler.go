package presentation

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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc, gate ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{authMW}, gate...)
	rg.POST("/generate-presentation", append(chain, h.generate)...)
	rg.GET("/mypresentations", authMW, h.mine)

	g := rg.Group("/presentations")
	g.GET("/:identifier", optionalAuthMW, h.get)
	g.PUT("/:identifier", authMW, h.update)
	g.DELETE("/:identifier", authMW, h.delete)
}

// POST /generate-presentation
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
	p, err := h.svc.Generate(middleware.Detached(c), userID, &dto)
	if err != nil {
		if errors.Is(err, errTopicRequired) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("presentation generation failed", zap.String("user_id", userID), zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.Created(c, toResponse(p))
}

// GET /mypresentations?search=
func (h *Handler) mine(c *gin.Context) {
	items, err := h.svc.ListByOwner(c.Request.Context(), middleware.CurrentUserID(c), c.Query("search"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponses(items))
}

// GET /presentations/:identifier (id or slug)
func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetByIdentifier(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if p == nil || (p.IsPrivate && p.UserID != middleware.CurrentUserID(c)) {
		response.NotFoundMsg(c, errPresentationNotFound.Error())
		return
	}
	response.OK(c, toResponse(p))
}

// PUT /presentations/:identifier
func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, ok := h.loadOwned(c)
	if !ok {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), p, &dto)
	if err != nil {
		if errors.Is(err, errInvalidSlides) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponse(p))
}

// DELETE /presentations/:identifier
func (h *Handler) delete(c *gin.Context) {
	p, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) loadOwned(c *gin.Context) (*models.Presentation, bool) {
	p, err := h.svc.GetByIdentifier(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		response.InternalError(c, err)
		return nil, false
	}
	if p == nil {
		response.NotFoundMsg(c, errPresentationNotFound.Error())
		return nil, false
	}
	if p.UserID != middleware.CurrentUserID(c) {
		response.ForbiddenMsg(c, "Access denied")
		return nil, false
	}
	return p, true
}
