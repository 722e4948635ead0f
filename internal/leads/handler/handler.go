package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/internal/leads/calendar"
	"leadpipeline_backend/internal/leads/management"
	"leadpipeline_backend/internal/leads/transport"
	"leadpipeline_backend/platform/httpkit"
	"leadpipeline_backend/platform/validator"
)

// Handler handles HTTP requests for leads.
type Handler struct {
	svc *management.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid lead id"
	msgInvalidItemID    = "invalid item id"
)

func New(svc *management.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts lead routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/calendar.ics", h.Calendar)
	rg.POST("/bulk-status", h.BulkStatus)
	rg.POST("/bulk-delete", h.BulkDelete)
	rg.POST("/bulk-assign", h.BulkAssign)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/communications", h.LogCommunication)
	rg.POST("/:id/reassign", h.Reassign)
	rg.POST("/:id/resources", h.AddResource)
	rg.DELETE("/:id/resources/:resourceId", h.RemoveResource)
	rg.POST("/:id/costs", h.AddMaterialCost)
	rg.DELETE("/:id/costs/:costId", h.RemoveMaterialCost)
}

// bindJSON decodes and validates the body. It writes the error response
// itself and reports whether the handler may continue.
func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Check(req); err != nil {
		httpkit.HandleError(c, err)
		return false
	}
	return true
}

func parseID(c *gin.Context, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, message, nil)
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
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

	result, err := h.svc.List(c.Request.Context(), principal, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), principal, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

// GET /api/v1/leads/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), principal, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// PUT /api/v1/leads/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), principal, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// DELETE /api/v1/leads/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), principal, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/leads/bulk-status
func (h *Handler) BulkStatus(c *gin.Context) {
	var req transport.BulkStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.svc.BulkUpdateStatus(c.Request.Context(), principal, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// POST /api/v1/leads/bulk-delete
func (h *Handler) BulkDelete(c *gin.Context) {
	var req transport.BulkDeleteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.svc.BulkDelete(c.Request.Context(), principal, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// POST /api/v1/leads/bulk-assign
func (h *Handler) BulkAssign(c *gin.Context) {
	var req transport.BulkAssignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.svc.BulkAssign(c.Request.Context(), principal, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// POST /api/v1/leads/:id/communications
func (h *Handler) LogCommunication(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}
	var req transport.LogCommunicationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	lead, err := h.svc.LogCommunication(c.Request.Context(), principal, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

// POST /api/v1/leads/:id/reassign
func (h *Handler) Reassign(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}
	var req transport.ReassignRequest
	if !h.bindJSON(c, &req) {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	lead, err := h.svc.Reassign(c.Request.Context(), principal, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// GET /api/v1/leads/calendar.ics
func (h *Handler) Calendar(c *gin.Context) {
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	leads, err := h.svc.FollowUps(c.Request.Context(), principal)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Content-Type", calendar.ContentType)
	c.Header("Content-Disposition", `attachment; filename="`+calendar.FileName+`"`)
	c.Status(http.StatusOK)
	_ = calendar.Write(c.Writer, leads)
}

// POST /api/v1/leads/:id/resources
func (h *Handler) AddResource(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}
	var req transport.AddResourceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	item, err := h.svc.AddResource(c.Request.Context(), principal, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, item)
}

// DELETE /api/v1/leads/:id/resources/:resourceId
func (h *Handler) RemoveResource(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}
	resourceID, ok := parseID(c, "resourceId", msgInvalidItemID)
	if !ok {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.RemoveResource(c.Request.Context(), principal, id, resourceID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/leads/:id/costs
func (h *Handler) AddMaterialCost(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}
	var req transport.AddMaterialCostRequest
	if !h.bindJSON(c, &req) {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	item, err := h.svc.AddMaterialCost(c.Request.Context(), principal, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, item)
}

// DELETE /api/v1/leads/:id/costs/:costId
func (h *Handler) RemoveMaterialCost(c *gin.Context) {
	id, ok := parseID(c, "id", msgInvalidID)
	if !ok {
		return
	}
	costID, ok := parseID(c, "costId", msgInvalidItemID)
	if !ok {
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.RemoveMaterialCost(c.Request.Context(), principal, id, costID)) {
		return
	}
	c.Status(http.StatusNoContent)
}
