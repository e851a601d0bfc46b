package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fastpass/internal/platform/metrics"
)

// LatencyMiddleware records request duration per matched route.
func LatencyMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.RequestLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}
