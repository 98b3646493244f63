package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sakif/newsdesk/internal/metrics"
)

// Metrics records Prometheus counters and latency histograms per request.
// The route label is chi's route pattern ("/api/articles/{id}"), resolved
// after the handler runs so path variables don't explode cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		metrics.HTTPRequestsInFlight.Inc()
		start := time.Now()

		next.ServeHTTP(ww, r)

		metrics.HTTPRequestsInFlight.Dec()

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequestsTotal.
			WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
			Inc()
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, route).
			Observe(time.Since(start).Seconds())
	})
}
