package http

import (
	"leadpipeline_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is one feature area (leads, personnel, catalog...) that mounts its
// own routes. main.go builds the modules; the router only iterates them.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups a module can mount on.
type RouterContext struct {
	// V1 is /api/v1 without authentication. Only sign-in lives here.
	V1 *gin.RouterGroup
	// Protected requires a valid access token and a loaded principal.
	// Per-lead permission checks happen in the services, not in middleware.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin, restricted to the admin role.
	Admin *gin.RouterGroup
	// AuthRateLimiter throttles credential endpoints per client IP.
	AuthRateLimiter *httpkit.AuthRateLimiter
}
