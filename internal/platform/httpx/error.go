// Package httpx writes JSON responses and the shared error envelope.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/totalcalc-web/internal/platform/requestctx"
)

// Error is the JSON error envelope returned by /api routes.
type Error struct {
	Code      string
	Message   string
	Status    int
	RequestID string
	Details   map[string]any
}

// NewError constructs an Error. A zero status means 500.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    sanitize(code, 80),
		Message: sanitize(message, 512),
		Status:  status,
	}
}

// NotFound is the 404 envelope.
func NotFound(message string) Error {
	return NewError("not_found", message, http.StatusNotFound)
}

// WithDetails attaches extra top-level fields to the payload.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	copied := make(map[string]any, len(details))
	for k, v := range details {
		copied[k] = v
	}
	e.Details = copied
	return e
}

func (e Error) Error() string { return e.Code + ": " + e.Message }

// WriteError writes err as JSON. The request id comes from chi's RequestID
// middleware when the error does not carry one.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	requestID := err.RequestID
	if requestID == "" {
		requestID = sanitize(middleware.GetReqID(ctx), 80)
	}

	payload := map[string]any{
		"error":   err.Code,
		"message": err.Message,
		"status":  status,
	}
	if requestID != "" {
		payload["request_id"] = requestID
	}
	if traceID := requestctx.TraceID(ctx); traceID != "" {
		payload["trace_id"] = traceID
	}
	for k, v := range err.Details {
		if _, reserved := payload[k]; !reserved {
			payload[k] = v
		}
	}
	WriteJSON(ctx, w, status, payload)
}

// WriteJSON encodes v with the given status.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		requestctx.Logger(ctx).Warn("encode json response", zap.Error(err))
	}
}

func sanitize(value string, limit int) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
