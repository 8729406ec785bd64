// Package middleware holds the cross-cutting Gin middleware shared by
// both services' routers: recovery, request correlation, structured
// access logging, and Prometheus metrics.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ledgerbridge/walletplatform/internal/pkg/logger"
)

const (
	// RequestIDHeader is the header carrying the correlation ID in
	// both directions.
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey is the Gin context key the ID is stored under.
	RequestIDContextKey = "request_id"
)

// RequestID attaches a correlation ID to every request: the inbound
// X-Request-ID if the caller sent one, otherwise a generated UUID.
// Downstream middleware (Logging, Recovery) and handlers read it back
// via GetRequestID so a single request is traceable end to end.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDContextKey, requestID)
		c.Header(RequestIDHeader, requestID)

		// Also place the id in the request's context.Context so the
		// logger's ContextHandler stamps it onto every log line the
		// engine or storage layer emits while handling this request.
		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID reads the correlation ID set by RequestID, or "" if
// the middleware never ran (e.g. in a handler unit test).
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDContextKey); exists {
		if strID, ok := id.(string); ok {
			return strID
		}
	}
	return ""
}
