// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"leadpipeline_backend/internal/events"
	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/internal/leads/assignment"
	"leadpipeline_backend/internal/leads/handler"
	"leadpipeline_backend/internal/leads/management"
	"leadpipeline_backend/internal/leads/repository"
	"leadpipeline_backend/internal/leads/scoring"
	personnelrepo "leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/platform/logger"
	"leadpipeline_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	repo       *repository.Repository
	management *management.Service
	scoring    *scoring.Service
	assignment *assignment.Engine
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	catalog management.Catalog,
	personnel *personnelrepo.Repository,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)

	scoringSvc := scoring.New(repo, log, nil)
	engine := assignment.New(repo, personnel, eventBus, log)
	mgmtSvc := management.New(repo, catalog, personnel, eventBus, log).WithAssigner(engine)

	return &Module{
		handler:    handler.New(mgmtSvc, val),
		repo:       repo,
		management: mgmtSvc,
		scoring:    scoringSvc,
		assignment: engine,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository exposes the lead store to the dispatcher.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// ManagementService returns the lead management service for external use.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// ScoringService returns the quality scorer the dispatcher runs on writes.
func (m *Module) ScoringService() *scoring.Service {
	return m.scoring
}

// AssignmentEngine returns the engine behind reassign and bulk assign.
func (m *Module) AssignmentEngine() *assignment.Engine {
	return m.assignment
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
