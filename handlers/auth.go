package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linglong/blog-admin/internal/config"
	"github.com/linglong/blog-admin/internal/ratelimit"
	"github.com/linglong/blog-admin/internal/sessions"
	"github.com/linglong/blog-admin/internal/tokens"
	"github.com/linglong/blog-admin/internal/users"
	"github.com/linglong/blog-admin/pkg/logger"
	"github.com/linglong/blog-admin/pkg/metrics"
	"github.com/linglong/blog-admin/pkg/middleware"
)

// LoginRequest is the OAuth2 password form the admin frontend posts.
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// AuthHandler holds dependencies for the authentication endpoints.
type AuthHandler struct {
	cfg      *config.Config
	usersSvc *users.Service
	gate     *ratelimit.Gate
}

func NewAuthHandler(cfg *config.Config, u *users.Service, g *ratelimit.Gate) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, gate: g}
}

// Register mounts the authentication routes.
func (h *AuthHandler) Register(r *gin.Engine) {
	r.POST("/token", h.Login)
	r.POST("/logout", middleware.AuthMiddleware(h.cfg), h.Logout)
}

// Login verifies admin credentials behind the credential gate and
// returns a bearer token. Five failed attempts lock the account for
// thirty minutes (both configurable).
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	if h.gate.IsLocked(req.Username) {
		h.rejectLocked(c, req.Username)
		return
	}

	user, err := h.usersSvc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logger.Errorf("credential lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication unavailable"})
		return
	}
	if user == nil {
		h.gate.RecordFailure(req.Username)
		metrics.LoginAttempts.WithLabelValues("failure").Inc()

		remaining := h.gate.RemainingAttempts(req.Username)
		if remaining > 0 {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": fmt.Sprintf("Incorrect username or password. %d attempts remaining.", remaining),
			})
			return
		}
		// this failure engaged the lock
		h.rejectLocked(c, req.Username)
		return
	}

	h.gate.RecordSuccess(req.Username)
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	access, err := tokens.GenerateAccessToken(h.cfg, user.Username, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		logger.Errorf("failed to sign access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": access, "token_type": "bearer"})
}

// Logout blacklists the presented bearer token for its remaining
// lifetime. Without Redis configured this is a no-op and the token
// stays valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	raw := c.GetString(middleware.TokenKey)
	if exp, err := tokens.TokenExpiry(raw); err == nil {
		if ttl := time.Until(exp); ttl > 0 {
			if err := sessions.BlacklistAccessToken(c.Request.Context(), raw, ttl); err != nil {
				logger.Errorf("failed to blacklist token at logout: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
				return
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) rejectLocked(c *gin.Context, username string) {
	metrics.LoginAttempts.WithLabelValues("locked").Inc()

	remaining := h.cfg.Login.LockoutDuration
	if expiry, ok := h.gate.LockoutExpiry(username); ok {
		remaining = time.Until(expiry)
	}
	minutes := int(remaining.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	c.Header("Retry-After", fmt.Sprintf("%d", minutes*60))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error": fmt.Sprintf("Account locked due to too many failed login attempts. Please try again in %d minutes.", minutes),
	})
}
