package handler

import (
	"net/http"

	"leadpipeline_backend/internal/auth/service"
	"leadpipeline_backend/internal/auth/transport"
	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/platform/httpkit"
	"leadpipeline_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const msgInvalidRequest = "invalid request"

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the public auth routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sign-in", h.SignIn)
}

// POST /api/v1/auth/sign-in
func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Check(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	resp, err := h.svc.SignIn(c.Request.Context(), req.Username, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// POST /api/v1/auth/password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req transport.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Check(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.ChangePassword(c.Request.Context(), principal.ID, req.CurrentPassword, req.NewPassword)) {
		return
	}
	httpkit.Message(c, "password updated")
}
