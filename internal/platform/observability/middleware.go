package observability

import (
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"finitefield.org/totalcalc-web/internal/platform/httpx"
	"finitefield.org/totalcalc-web/internal/platform/requestctx"
)

// InjectLoggerMiddleware stores logger on every request context.
func InjectLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestctx.WithLogger(r.Context(), logger)))
		})
	}
}

// RequestLoggerMiddleware enriches the request logger with request fields and
// logs one completion line per request.
func RequestLoggerMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			traceInfo, _ := requestctx.Trace(ctx)
			logger := requestctx.Logger(ctx).With(
				zap.String("request_id", middleware.GetReqID(ctx)),
				zap.String("method", SanitizeMethod(r.Method)),
				zap.String("path", SanitizeRoute(r.URL.Path)),
				zap.String("trace_id", traceInfo.TraceID),
			)
			if res := loggingTraceResource(traceInfo); res != "" {
				logger = logger.With(zap.String("logging.googleapis.com/trace", res))
			}
			if ip := realIP(r); ip != "" {
				logger = logger.With(zap.String("remote_ip", ip))
			}
			ctx = requestctx.WithLogger(ctx, logger)
			r = r.WithContext(ctx)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			panicked := true
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				if panicked {
					status = http.StatusInternalServerError
				}
				// chi fills the pattern while routing, so read it after the handler ran.
				route := routePattern(r)
				if span := trace.SpanFromContext(ctx); span.IsRecording() {
					span.SetAttributes(semconv.HTTPResponseStatusCode(status), semconv.HTTPRoute(SanitizeRoute(route)))
					if status >= http.StatusInternalServerError {
						span.SetStatus(codes.Error, http.StatusText(status))
					}
				}
				fields := []zap.Field{
					zap.String("route", SanitizeRoute(route)),
					zap.Int("status", status),
					zap.Duration("latency", time.Since(start)),
					zap.Int("bytes", ww.BytesWritten()),
				}
				switch {
				case status >= http.StatusInternalServerError:
					logger.Error("request completed", fields...)
				case status >= http.StatusBadRequest:
					logger.Warn("request completed", fields...)
				default:
					logger.Info("request completed", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
			panicked = false
		})
	}
}

// RecoveryMiddleware turns a panic into a 500. Requests under /api/ get the
// JSON envelope; everything else gets a plain text body.
func RecoveryMiddleware(fallback *zap.Logger) func(http.Handler) http.Handler {
	if fallback == nil {
		fallback = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				ctx := r.Context()
				logger := requestctx.Logger(ctx)
				if logger == requestctx.NoopLogger() {
					logger = fallback
				}
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				if strings.HasPrefix(r.URL.Path, "/api/") {
					httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
					return
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	if r.URL != nil && r.URL.Path != "" {
		return r.URL.Path
	}
	return "/"
}

func realIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return sanitizeString(addr, 64)
}

func loggingTraceResource(info requestctx.TraceInfo) string {
	if info.ProjectID == "" || info.TraceID == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/traces/%s", info.ProjectID, info.TraceID)
}
