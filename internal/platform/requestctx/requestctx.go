// Package requestctx carries the per-request correlation ID through a
// context.Context so handlers and middleware can tag logs, envelopes and
// audit rows with it.
package requestctx

import "context"

type ctxKey int

const requestIDKey ctxKey = iota

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the stored ID, or "" for contexts that never passed
// through the request-ID middleware.
func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}
