package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/cwilkins507/my-portfolio/internal/platform/logging"
)

const (
	// HeaderRequestID carries the per-request id.
	HeaderRequestID = "X-Request-ID"

	// ContextKeyRequestID is the gin context key of the request id.
	ContextKeyRequestID = "request_id"
)

// RequestID reads X-Request-ID or generates a UUID, and adds it to the
// request logger.
func RequestID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderRequestID,
		contextKey: ContextKeyRequestID,
		enrichers:  []enricher{ContextWithRequestID, logging.WithRequestID},
	})
}

// GetRequestID returns the request id set by RequestID.
func GetRequestID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyRequestID)
}
