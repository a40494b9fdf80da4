package middleware

import (
	"net/http"

	"taskboard/internal/auth"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireAuth resolves the caller before any handler runs. Unauthenticated
// requests stop here with 401.
func RequireAuth(a auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.Resolve(c.Request)
		if err != nil || id.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireAuth
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// WithIdentity stores id on the context. Tests use it to bypass token parsing.
func WithIdentity(c *gin.Context, id auth.Identity) {
	c.Set(identityKey, id)
}
