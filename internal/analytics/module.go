// Package analytics provides the dashboard and daily snapshot module.
package analytics

import (
	"time"

	"leadpipeline_backend/internal/analytics/handler"
	"leadpipeline_backend/internal/analytics/repository"
	"leadpipeline_backend/internal/analytics/service"
	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/platform/logger"
	"leadpipeline_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the analytics service over the shared lead and personnel
// stores. loc decides which calendar date a snapshot belongs to.
func NewModule(
	pool *pgxpool.Pool,
	leads service.LeadSource,
	performers service.PerformerSource,
	loc *time.Location,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	svc := service.New(leads, performers, repository.New(pool), loc, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "analytics"
}

// Service exposes the snapshot capture to the background worker.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/analytics")
	group.GET("", m.handler.Dashboard)
	group.GET("/snapshots", m.handler.ListSnapshots)

	ctx.Admin.POST("/analytics/snapshots", m.handler.CaptureSnapshot)
}

var _ apphttp.Module = (*Module)(nil)
