package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stylescanner/server/internal/pkg/pagination"
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

// RegisterRoutes mounts /admin; adminMW must run after authMW.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/admin", authMW, adminMW)

	g.GET("/dashboard", h.dashboard)
	g.GET("/users", h.users)
	g.GET("/feedbacks", h.feedbacks)
	g.GET("/insights", h.insights)
	g.GET("/presentations", h.presentations)
	g.GET("/insights-model-stats", h.modelStats)

	g.DELETE("/users/:id", h.deleteUser)
	g.DELETE("/feedbacks/:id", h.deleteFeedback)
	g.DELETE("/insights/:id", h.deleteInsight)
	g.DELETE("/presentations/:id", h.deletePresentation)

	g.PUT("/users/:id/subscription", h.setSubscription)
	g.PUT("/insights/:id/privacy", h.setInsightPrivacy)
	g.PUT("/presentations/:id/privacy", h.setPresentationPrivacy)
}

// GET /admin/dashboard
func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, "admin dashboard", err)
		return
	}
	response.OK(c, d)
}

// GET /admin/users
func (h *Handler) users(c *gin.Context) {
	items, pag, err := h.svc.Users(c.Request.Context(), pagination.FromContext(c))
	if err != nil {
		h.fail(c, "admin users", err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /admin/feedbacks
func (h *Handler) feedbacks(c *gin.Context) {
	items, pag, err := h.svc.Feedbacks(c.Request.Context(), pagination.FromContext(c))
	if err != nil {
		h.fail(c, "admin feedbacks", err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /admin/insights
func (h *Handler) insights(c *gin.Context) {
	items, pag, err := h.svc.Insights(c.Request.Context(), pagination.FromContext(c))
	if err != nil {
		h.fail(c, "admin insights", err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /admin/presentations
func (h *Handler) presentations(c *gin.Context) {
	items, pag, err := h.svc.Presentations(c.Request.Context(), pagination.FromContext(c))
	if err != nil {
		h.fail(c, "admin presentations", err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /admin/insights-model-stats
func (h *Handler) modelStats(c *gin.Context) {
	stats, err := h.svc.InsightModelStats(c.Request.Context())
	if err != nil {
		h.fail(c, "admin model stats", err)
		return
	}
	response.OK(c, stats)
}

// DELETE /admin/users/:id
func (h *Handler) deleteUser(c *gin.Context) {
	if h.done(c, "admin user delete", h.svc.DeleteUser(c.Request.Context(), c.Param("id"))) {
		response.Message(c, "User and associated data deleted successfully")
	}
}

// DELETE /admin/feedbacks/:id
func (h *Handler) deleteFeedback(c *gin.Context) {
	if h.done(c, "admin feedback delete", h.svc.DeleteFeedback(c.Request.Context(), c.Param("id"))) {
		response.Message(c, "Feedback deleted successfully")
	}
}

// DELETE /admin/insights/:id
func (h *Handler) deleteInsight(c *gin.Context) {
	if h.done(c, "admin insight delete", h.svc.DeleteInsight(c.Request.Context(), c.Param("id"))) {
		response.Message(c, "Insight deleted successfully")
	}
}

// DELETE /admin/presentations/:id
func (h *Handler) deletePresentation(c *gin.Context) {
	if h.done(c, "admin presentation delete", h.svc.DeletePresentation(c.Request.Context(), c.Param("id"))) {
		response.Message(c, "Presentation deleted successfully")
	}
}

// PUT /admin/users/:id/subscription
func (h *Handler) setSubscription(c *gin.Context) {
	var dto SubscriptionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, errInvalidSubscription.Error())
		return
	}
	err := h.svc.SetSubscription(c.Request.Context(), c.Param("id"), dto.SubscriptionStatus)
	if h.done(c, "admin subscription update", err) {
		response.Message(c, "User subscription updated successfully")
	}
}

// PUT /admin/insights/:id/privacy
func (h *Handler) setInsightPrivacy(c *gin.Context) {
	var dto PrivacyDTO
	if err := c.ShouldBindJSON(&dto); err != nil || dto.IsPrivate == nil {
		response.BadRequest(c, errInvalidPrivacy.Error())
		return
	}
	err := h.svc.SetInsightPrivacy(c.Request.Context(), c.Param("id"), *dto.IsPrivate)
	if h.done(c, "admin insight privacy update", err) {
		response.Message(c, "Insight privacy status updated successfully")
	}
}

// PUT /admin/presentations/:id/privacy
func (h *Handler) setPresentationPrivacy(c *gin.Context) {
	var dto PrivacyDTO
	if err := c.ShouldBindJSON(&dto); err != nil || dto.IsPrivate == nil {
		response.BadRequest(c, errInvalidPrivacy.Error())
		return
	}
	err := h.svc.SetPresentationPrivacy(c.Request.Context(), c.Param("id"), *dto.IsPrivate)
	if h.done(c, "admin presentation privacy update", err) {
		response.Message(c, "Presentation privacy status updated successfully")
	}
}

// done maps service errors to responses and reports whether the call succeeded.
func (h *Handler) done(c *gin.Context, op string, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, errInvalidSubscription):
		response.BadRequest(c, err.Error())
	case errors.Is(err, errUserNotFound), errors.Is(err, errFeedbackNotFound),
		errors.Is(err, errInsightNotFound), errors.Is(err, errPresentationNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	default:
		h.fail(c, op, err)
	}
	return false
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	response.InternalError(c, err)
}
