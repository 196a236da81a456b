// Package requestid carries the per-request correlation ID through context.
// It sits below both the HTTP middleware and the event notifier, so neither
// layer has to import the other to read the ID.
package requestid

import "context"

type contextKey struct{}

// WithContext returns a context carrying the correlation ID.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the correlation ID, or "" when none was set.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}
