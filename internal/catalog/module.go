// Package catalog provides the catalog bounded context module.
package catalog

import (
	"leadpipeline_backend/internal/catalog/handler"
	"leadpipeline_backend/internal/catalog/repository"
	"leadpipeline_backend/internal/catalog/service"
	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/platform/httpkit"
	"leadpipeline_backend/platform/logger"
	"leadpipeline_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Product writes check the principal in the service so executives can
	// manage products too.
	ctx.Protected.GET("/products", m.handler.ListProducts)
	ctx.Protected.GET("/products/:id", m.handler.GetProduct)
	ctx.Protected.POST("/products", m.handler.CreateProduct)
	ctx.Protected.PUT("/products/:id", m.handler.UpdateProduct)
	ctx.Protected.DELETE("/products/:id", m.handler.DeleteProduct)

	ctx.Protected.GET("/teams", m.handler.ListTeams)
	ctx.Protected.POST("/teams", httpkit.RequireAnyRole("admin"), m.handler.CreateTeam)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
