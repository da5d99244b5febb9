package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wedding-seating/internal/auth"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	claimsKey       = "admin_claims"
)

// RequestID tags each request with the caller's X-Request-ID or a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID returns the id RequestID stored.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger logs one line per request, at a level following the status.
func Logger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("request_id", GetRequestID(c)).
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("Request completed")
	}
}

// AdminAuth requires a valid admin token cookie.
func AdminAuth(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.CookieName)
		if err != nil || token == "" {
			Unauthorized(c, "Not authenticated")
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			Unauthorized(c, "Invalid or expired token")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CronAuth requires Authorization: Bearer <secret>. Nothing downstream
// runs on a mismatch.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.CheckBearer(c.GetHeader("Authorization"), secret) {
			Unauthorized(c, "Unauthorized")
			return
		}
		c.Next()
	}
}
