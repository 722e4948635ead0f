package auth

import (
	"context"
	"net/http"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PrincipalSource resolves the token subject to an access principal.
type PrincipalSource interface {
	LoadPrincipal(ctx context.Context, id uuid.UUID) (access.Principal, error)
}

// PrincipalLoader runs after httpkit.AuthRequired. It reloads the caller
// from the personnel store and puts the principal on the request context.
func PrincipalLoader(src PrincipalSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpkit.GetIdentity(c)
		if !id.IsAuthenticated() {
			httpkit.Error(c, http.StatusUnauthorized, "unauthorized", nil)
			c.Abort()
			return
		}

		principal, err := src.LoadPrincipal(c.Request.Context(), id.UserID())
		if httpkit.HandleError(c, err) {
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(access.NewContext(c.Request.Context(), principal))
		c.Next()
	}
}
