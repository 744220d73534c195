package observability

import (
	"encoding/binary"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"finitefield.org/totalcalc-web/internal/platform/requestctx"
)

const cloudTraceHeader = "X-Cloud-Trace-Context"

const instrumentationName = "finitefield.org/totalcalc-web/internal/platform/observability"

// TraceMiddleware continues an incoming X-Cloud-Trace-Context, starts a server
// span and stores the trace metadata on the request context. Spans go to the
// global tracer provider, which is a no-op unless one is installed.
func TraceMiddleware(projectID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if remote, ok := parseCloudTraceContext(r.Header.Get(cloudTraceHeader)); ok {
				ctx = trace.ContextWithRemoteSpanContext(ctx, remote)
			}

			ctx, span := otel.Tracer(instrumentationName).Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(requestAttributes(r)...),
			)
			defer span.End()

			sc := span.SpanContext()
			if !sc.IsValid() {
				// No-op provider: keep the caller's context when one was propagated.
				sc = trace.SpanContextFromContext(ctx)
			}
			info := requestctx.TraceInfo{ProjectID: projectID}
			if sc.IsValid() {
				info.TraceID = sc.TraceID().String()
				info.SpanID = sc.SpanID().String()
				info.Sampled = sc.IsSampled()
			}
			if header := formatCloudTraceHeader(info); header != "" {
				w.Header().Set(cloudTraceHeader, header)
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithTrace(ctx, info)))
		})
	}
}

// parseCloudTraceContext reads "TRACE_ID/SPAN_ID;o=OPTIONS". The span id is
// decimal on the wire.
func parseCloudTraceContext(header string) (trace.SpanContext, bool) {
	header = strings.TrimSpace(header)
	traceHex, rest, ok := strings.Cut(header, "/")
	if !ok || len(traceHex) != 32 {
		return trace.SpanContext{}, false
	}
	traceID, err := trace.TraceIDFromHex(strings.ToLower(traceHex))
	if err != nil {
		return trace.SpanContext{}, false
	}
	spanPart, options, _ := strings.Cut(rest, ";")
	spanID, ok := parseSpanID(spanPart)
	if !ok {
		return trace.SpanContext{}, false
	}
	var flags trace.TraceFlags
	if strings.TrimSpace(options) == "o=1" {
		flags = trace.FlagsSampled
	}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: flags,
		Remote:     true,
	}), true
}

func parseSpanID(value string) (trace.SpanID, bool) {
	num, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || num == 0 {
		return trace.SpanID{}, false
	}
	var id trace.SpanID
	binary.BigEndian.PutUint64(id[:], num)
	return id, true
}

func formatCloudTraceHeader(info requestctx.TraceInfo) string {
	if info.TraceID == "" || info.SpanID == "" {
		return ""
	}
	id, err := trace.SpanIDFromHex(info.SpanID)
	if err != nil {
		return ""
	}
	option := 0
	if info.Sampled {
		option = 1
	}
	return fmt.Sprintf("%s/%d;o=%d", info.TraceID, binary.BigEndian.Uint64(id[:]), option)
}

func requestAttributes(r *http.Request) []attribute.KeyValue {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", r.Method),
		attribute.String("url.scheme", scheme),
		attribute.String("url.path", r.URL.Path),
	}
	if r.Host != "" {
		attrs = append(attrs, attribute.String("server.address", r.Host))
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", ua))
	}
	return attrs
}
