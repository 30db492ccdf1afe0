package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	// traceIDKey is the key for the trace ID in the request context.
	traceIDKey contextKey = "trace_id"
	// TraceIDHeader is the HTTP header name for the trace ID.
	TraceIDHeader = "X-Trace-ID"
)

// TraceID tags each request with a trace ID, reusing one supplied by the
// caller in the header or generating a fresh UUID.
func TraceID() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceIDHeader)
			if traceID == "" {
				traceID = uuid.New().String()
			}

			w.Header().Set(TraceIDHeader, traceID)
			ctx := context.WithValue(r.Context(), traceIDKey, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// traceIDFrom retrieves the trace ID from the request context.
func traceIDFrom(r *http.Request) string {
	if traceID, ok := r.Context().Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}
