package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// contextKey namespaces values stored by this package.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerKey    = contextKey("logger")
	requestIDKey = contextKey("requestID")
)

// GetRequestIDFromContext retrieves the request id assigned by
// StructuredLoggingMiddleware. It returns false when none was assigned.
func GetRequestIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(requestIDKey)); exists {
		id, ok := v.(string)
		return id, ok
	}
	return requestIDFromCtx(c.Request.Context())
}

func requestIDFromCtx(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}
