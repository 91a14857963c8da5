package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/linglong/blog-admin/internal/config"
	"github.com/linglong/blog-admin/internal/sessions"
	"github.com/linglong/blog-admin/internal/tokens"
	"github.com/linglong/blog-admin/pkg/logger"
)

const (
	// UsernameKey is the gin context key holding the verified subject.
	UsernameKey = "username"
	// TokenKey is the gin context key holding the raw bearer token.
	TokenKey = "token"
)

// AuthMiddleware verifies the Bearer token and rejects blacklisted
// (logged-out) tokens. The verified username is stored on the context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")
		if raw == auth || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		username, err := tokens.VerifyAccessToken(cfg, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		blacklisted, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), raw)
		if err != nil {
			// fail open on blacklist backend errors, the signature already verified
			logger.Errorf("token blacklist check failed: %v", err)
		} else if blacklisted {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has been revoked"})
			return
		}

		c.Set(UsernameKey, username)
		c.Set(TokenKey, raw)
		c.Next()
	}
}
