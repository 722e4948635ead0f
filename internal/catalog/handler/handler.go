package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadpipeline_backend/internal/catalog/service"
	"leadpipeline_backend/internal/catalog/transport"
	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/platform/httpkit"
	"leadpipeline_backend/platform/validator"
)

// Handler handles HTTP requests for catalog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid catalog id"
)

// New creates a new catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListProducts retrieves products.
// GET /api/v1/products
func (h *Handler) ListProducts(c *gin.Context) {
	var req transport.ListProductsRequest
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

	result, err := h.svc.ListProducts(c.Request.Context(), principal, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetProduct retrieves a product by ID.
// GET /api/v1/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.svc.GetProduct(c.Request.Context(), principal, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateProduct creates a product.
// POST /api/v1/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req transport.CreateProductRequest
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

	result, err := h.svc.CreateProduct(c.Request.Context(), principal, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateProduct updates a product.
// PUT /api/v1/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateProductRequest
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

	result, err := h.svc.UpdateProduct(c.Request.Context(), principal, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteProduct deletes a product.
// DELETE /api/v1/products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	principal, ok := apphttp.MustGetPrincipal(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteProduct(c.Request.Context(), principal, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTeams retrieves active teams.
// GET /api/v1/teams
func (h *Handler) ListTeams(c *gin.Context) {
	result, err := h.svc.ListTeams(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateTeam creates a team.
// POST /api/v1/teams
func (h *Handler) CreateTeam(c *gin.Context) {
	var req transport.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Check(req); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	result, err := h.svc.CreateTeam(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}
