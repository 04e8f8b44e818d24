//nolint:revive // exported
package mwreqid

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type ContextKey int

const (
	RequestIDKeyCtx ContextKey = iota
)

const Header = "X-Request-Id"

// FromContext returns the request id assigned by Wrap, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKeyCtx).(string)
	return id
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Wrap tags every request with a uuid (keeping a caller-supplied one), echoes
// it in the response header and logs one access line per request.
func Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		ctx := context.WithValue(r.Context(), RequestIDKeyCtx, id)
		next.ServeHTTP(sw, r.WithContext(ctx))

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", float64(time.Since(start))/float64(time.Millisecond),
			"request_id", id,
		)
	})
}
