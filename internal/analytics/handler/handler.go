package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leadpipeline_backend/internal/analytics/service"
	"leadpipeline_backend/internal/analytics/transport"
	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/platform/httpkit"
	"leadpipeline_backend/platform/validator"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Dashboard returns the pipeline report for the caller's accessible leads.
// GET /api/v1/analytics
func (h *Handler) Dashboard(c *gin.Context) {
	var req transport.DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	report, err := h.svc.ComputeDashboard(c.Request.Context(), principal, req.Division)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

// GET /api/v1/analytics/snapshots
func (h *Handler) ListSnapshots(c *gin.Context) {
	var req transport.ListSnapshotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListSnapshots(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CaptureSnapshot runs the daily capture on demand.
// POST /api/v1/admin/analytics/snapshots
func (h *Handler) CaptureSnapshot(c *gin.Context) {
	snap, err := h.svc.CaptureSnapshot(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, snap)
}
