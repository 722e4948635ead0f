// Package personnel provides the personnel directory module.
package personnel

import (
	"leadpipeline_backend/internal/adapters/storage"
	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/internal/personnel/handler"
	"leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/internal/personnel/service"
	"leadpipeline_backend/platform/logger"
	"leadpipeline_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the personnel bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the personnel module. storageSvc may be nil.
func NewModule(pool *pgxpool.Pool, storageSvc storage.StorageService, bucket string, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, storageSvc, bucket, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

func (m *Module) Name() string {
	return "personnel"
}

// Repository exposes the store for the auth principal loader and the
// assignment engine.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/personnel")
	group.GET("", m.handler.List)
	group.GET("/me", m.handler.Profile)
	group.POST("", m.handler.Create)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Deactivate)
	group.POST("/:id/avatar", m.handler.UploadAvatar)
}

var _ apphttp.Module = (*Module)(nil)
