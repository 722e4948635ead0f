package http

import (
	"net/http"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// MustGetPrincipal returns the principal loaded for this request. It aborts
// with 401 when the request did not pass through the principal loader.
func MustGetPrincipal(c *gin.Context) (access.Principal, bool) {
	principal, ok := access.FromContext(c.Request.Context())
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		c.Abort()
		return access.Principal{}, false
	}
	return principal, true
}
