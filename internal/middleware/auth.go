package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"realty-chat-service/internal/auth"
)

// IdentityResolver turns a raw bearer token into an identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) auth.Identity
}

// AuthMiddleware validates the Authorization header. Unlike the websocket
// layer, the REST surface rejects anonymous callers outright.
func AuthMiddleware(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		identity := resolver.Resolve(c.Request.Context(), parts[1])
		if !identity.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("userID", identity.UserID)
		c.Set("userName", identity.FullName)
		c.Next()
	}
}
