package api

import "context"

// contextKey is a private type to prevent context key collisions across packages.
type contextKey string

// ContextKeyRequestID stores the unique request identifier (string)
const ContextKeyRequestID contextKey = "request_id"

// WithRequestID returns a context carrying the request ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts the request ID from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyRequestID).(string)
	return id, ok
}
