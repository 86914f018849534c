package logging

import (
	"context"

	mdwlog "github.com/msto63/cdlc/foundation/core/log"
)

// Context keys for request metadata
type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader string     = "X-Request-ID"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns logger tagged with the request ID carried by ctx, or
// logger itself when there is none
func FromContext(ctx context.Context, logger *mdwlog.Logger) *mdwlog.Logger {
	if id := GetRequestID(ctx); id != "" {
		return logger.WithRequestID(id)
	}
	return logger
}
