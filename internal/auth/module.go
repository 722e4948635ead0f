// Package auth provides the authentication bounded context module.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"leadpipeline_backend/internal/auth/handler"
	"leadpipeline_backend/internal/auth/service"
	apphttp "leadpipeline_backend/internal/http"
	"leadpipeline_backend/platform/config"
	"leadpipeline_backend/platform/logger"
	"leadpipeline_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the auth module on top of the personnel store.
func NewModule(people service.PersonnelStore, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(people, cfg, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service.
func (m *Module) Service() *service.Service {
	return m.service
}

// PrincipalLoader returns the middleware that loads the access principal
// on protected routes.
func (m *Module) PrincipalLoader() gin.HandlerFunc {
	return PrincipalLoader(m.service)
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.POST("/auth/password", m.handler.ChangePassword)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
