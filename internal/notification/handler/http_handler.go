package handler

import (
	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/internal/notification/inapp"
	"leadpipeline_backend/internal/notification/sse"
	"leadpipeline_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HTTPHandler struct {
	svc *inapp.Service
	sse *sse.Service
}

func NewHTTPHandler(svc *inapp.Service, stream *sse.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc, sse: stream}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/stream", h.sse.Handler(principalID))
	rg.POST("/read-all", h.MarkAllRead)
	rg.POST("/:id/read", h.MarkRead)
}

func principalID(c *gin.Context) (uuid.UUID, bool) {
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return uuid.Nil, false
	}
	return principal.ID, true
}

// GET /api/v1/notifications
func (h *HTTPHandler) List(c *gin.Context) {
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	items, err := h.svc.List(c.Request.Context(), principal.ID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"items": items,
		"total": len(items),
	})
}

// POST /api/v1/notifications/:id/read
func (h *HTTPHandler) MarkRead(c *gin.Context) {
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	message, err := h.svc.MarkRead(c.Request.Context(), principal.ID, c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Message(c, message)
}

// POST /api/v1/notifications/read-all
func (h *HTTPHandler) MarkAllRead(c *gin.Context) {
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	message, err := h.svc.MarkAllRead(c.Request.Context(), principal.ID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Message(c, message)
}
