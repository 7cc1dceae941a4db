package user

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/stylescanner/server/internal/middleware"
	"github.com/stylescanner/server/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.PUT("/login", authMW, h.refresh)

	p := rg.Group("/profile", authMW)
	p.GET("", h.profile)
	p.PUT("", h.updateProfile)
	p.PUT("/password", h.changePassword)
}

// POST /register
func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, u, err := h.svc.Register(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, errUserExists) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, authResponse{Token: token, User: toResponse(u)})
}

// POST /login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, u, err := h.svc.Login(c.Request.Context(), dto.Email, dto.Password)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, authResponse{Token: token, User: toResponse(u)})
}

// PUT /login
func (h *Handler) refresh(c *gin.Context) {
	u, err := h.svc.GetByID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFoundMsg(c, "User not found")
		return
	}
	token, err := h.svc.Refresh(u)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, authResponse{Token: token, User: toResponse(u)})
}

// GET /profile
func (h *Handler) profile(c *gin.Context) {
	u, err := h.svc.GetByID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFoundMsg(c, "User not found")
		return
	}
	response.OK(c, toResponse(u))
}

// PUT /profile
func (h *Handler) updateProfile(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		if errors.Is(err, errInvalidJSON) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	if u == nil {
		response.NotFoundMsg(c, "User not found")
		return
	}
	response.OK(c, toResponse(u))
}

// PUT /profile/password
func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.svc.ChangePassword(c.Request.Context(), middleware.CurrentUserID(c), dto.OldPassword, dto.NewPassword)
	if err != nil {
		if errors.Is(err, errWrongPassword) || errors.Is(err, errPasswordSameAsOld) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Message(c, "Password updated")
}
