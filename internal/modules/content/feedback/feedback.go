package feedback

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stylescanner/server/internal/middleware"
	"github.com/stylescanner/server/internal/models"
	"github.com/stylescanner/server/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultType  = "general"
	maxTypeRunes = 32
)

var errMessageRequired = errors.New("Message is required")

type CreateDTO struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Create stores a feedback message. userID may be empty for anonymous feedback.
func (s *Service) Create(ctx context.Context, userID string, dto *CreateDTO) (*models.Feedback, error) {
	msg := strings.TrimSpace(dto.Message)
	if msg == "" {
		return nil, errMessageRequired
	}
	typ := strings.TrimSpace(dto.Type)
	if typ == "" {
		typ = defaultType
	}
	if r := []rune(typ); len(r) > maxTypeRunes {
		typ = string(r[:maxTypeRunes])
	}

	fb := models.Feedback{Message: msg, Type: typ}
	if userID != "" {
		fb.UserID = &userID
	}
	return &fb, s.db.WithContext(ctx).Create(&fb).Error
}

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, optionalAuthMW gin.HandlerFunc) {
	rg.POST("/feedback", optionalAuthMW, h.create)
}

// POST /feedback
func (h *Handler) create(c *gin.Context) {
	var dto CreateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	fb, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		if errors.Is(err, errMessageRequired) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("save feedback failed", zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.Created(c, fb)
}
