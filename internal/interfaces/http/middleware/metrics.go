package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/prometheus"
)

// Metrics returns middleware that records per-request counters, latency, and
// response size under the route pattern (not the raw path, which would blow
// up label cardinality on garbage URLs).
func Metrics(metrics *prometheus.AppMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			active := metrics.HTTPActiveRequests.WithLabelValues(r.Method, r.URL.Path)
			active.Inc()
			defer active.Dec()

			wrapped := newWrappedResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			path := routePattern(r)
			prometheus.RecordHTTPRequest(metrics, r.Method, path, wrapped.statusCode, time.Since(start), wrapped.bytesWritten)
		})
	}
}

// routePattern resolves the matched chi route pattern after the handler ran.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
