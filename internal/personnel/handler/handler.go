package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/internal/personnel/service"
	"leadpipeline_backend/internal/personnel/transport"
	"leadpipeline_backend/platform/httpkit"
	"leadpipeline_backend/platform/validator"
)

// Handler handles HTTP requests for personnel.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid personnel id"
	formFieldAvatar     = "file"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List returns active personnel with their current workload.
// GET /api/v1/personnel
func (h *Handler) List(c *gin.Context) {
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), principal)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Profile returns the caller and their capabilities.
// GET /api/v1/personnel/me
func (h *Handler) Profile(c *gin.Context) {
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.svc.Profile(c.Request.Context(), principal)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Create adds a personnel account.
// POST /api/v1/personnel
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreatePersonnelRequest
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

	result, err := h.svc.Create(c.Request.Context(), principal, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// Update changes a personnel account.
// PUT /api/v1/personnel/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdatePersonnelRequest
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

	result, err := h.svc.Update(c.Request.Context(), principal, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Deactivate disables a personnel account.
// DELETE /api/v1/personnel/:id
func (h *Handler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Deactivate(c.Request.Context(), principal, id)) {
		return
	}
	httpkit.Message(c, "Personnel deactivated")
}

// UploadAvatar stores a new avatar image.
// POST /api/v1/personnel/:id/avatar
func (h *Handler) UploadAvatar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	fileHeader, err := c.FormFile(formFieldAvatar)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read upload", nil)
		return
	}
	defer func() { _ = file.Close() }()

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := h.svc.UploadAvatar(c.Request.Context(), principal, id, fileHeader.Filename, contentType, file, fileHeader.Size)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
