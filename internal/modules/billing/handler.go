package billing

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/stripe-webhook", h.webhook)
}

// POST /stripe-webhook
func (h *Handler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadBytes))
	if err != nil {
		response.BadRequest(c, "Webhook Error: "+err.Error())
		return
	}
	out, err := h.svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		var verr *VerifyError
		if errors.As(err, &verr) {
			response.BadRequest(c, "Webhook Error: "+verr.Error())
			return
		}
		h.logger.Error("stripe webhook failed", zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.OK(c, out)
}
