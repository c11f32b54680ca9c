package core

import "context"

// Context keys for analysis options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	progressKey       contextKey = "progress"
)

// WithSuppressHeader marks the context so that console headers and hints are not printed.
// Used when stdout belongs to a protocol, e.g. the MCP server.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithProgress attaches a progress callback to the context.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey, fn)
}

// progressFromContext returns the progress callback from context, or nil
func progressFromContext(ctx context.Context) ProgressFunc {
	fn, _ := ctx.Value(progressKey).(ProgressFunc)
	return fn
}
