// Package requestctx carries request-scoped logging and trace metadata.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type contextKey int

const (
	loggerKey contextKey = iota
	traceKey
)

var noopLogger = zap.NewNop()

// TraceInfo is the trace metadata attached to a request.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

// WithLogger stores logger on ctx. A nil logger stores the no-op logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the request logger or a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger exposes the shared no-op logger.
func NoopLogger() *zap.Logger { return noopLogger }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, traceKey, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	if ctx == nil {
		return TraceInfo{}, false
	}
	info, ok := ctx.Value(traceKey).(TraceInfo)
	return info, ok
}

// TraceID returns the trace identifier, or "" outside a traced request.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}
