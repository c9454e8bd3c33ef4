package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wyejay/MedPeer/pkg/telemetry"
)

// contextUserKey is the gin context key carrying the authenticated user id
const contextUserKey = "user_id"

// RequestLogger logs one line per request with method, path, status and latency
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// Trace opens a span per request, named after the matched route, so handler
// and repository work nests under it
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		ctx, span := telemetry.StartSpan(c.Request.Context(), c.Request.Method+" "+route)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireAuth verifies the bearer token and stores the user id in the context
func (r *Router) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortWithError(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := r.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(contextUserKey, userID)
		c.Next()
	}
}

// requireAdmin loads the authenticated user and rejects non-admins.
// Must run after requireAuth.
func (r *Router) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := r.users.GetByID(c.Request.Context(), currentUserID(c))
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "failed to load user")
			return
		}
		if user == nil || !user.IsAdmin {
			abortWithError(c, http.StatusForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

// currentUserID returns the authenticated user's id set by requireAuth
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(contextUserKey)
}
