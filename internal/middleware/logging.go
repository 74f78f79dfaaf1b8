// Package middleware contains the HTTP middleware that wraps every route:
// request-ID assignment and request logging. Authentication middleware lives
// in internal/auth next to the token service it depends on.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
)

// requestIDHeader is the header the ID is read from and echoed back on.
// Clients and proxies that already assign IDs keep theirs; everyone else
// gets one generated here.
const requestIDHeader = "X-Request-Id"

// contextKey is an unexported type for this package's context keys.
type contextKey string

const requestIDKey contextKey = "requestID"

// RequestID ensures every request carries an ID for log correlation. The
// client's X-Request-Id is kept when present; otherwise a fresh xid is
// generated. The ID is stored in the request context and echoed in the
// response header so callers can quote it when reporting a failure.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = xid.New().String()
		}

		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request's ID, or "" when RequestID did
// not run.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// responseWriter wraps http.ResponseWriter to capture the status code and
// the number of body bytes, which the ResponseWriter interface does not
// expose after the fact.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logger returns a middleware that logs one line per completed request:
// method, path, status, duration, bytes written, and the request ID.
//
// The log line never includes the request body or the Authorization header,
// so credentials and tokens cannot end up in log storage.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK, // default if WriteHeader is never called
			}

			next.ServeHTTP(wrapped, r)

			logger.Info("request completed",
				slog.String("requestID", RequestIDFromContext(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
			)
		})
	}
}
