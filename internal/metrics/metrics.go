// Package metrics registers the Prometheus collectors the server exposes on
// /metrics. Collectors are package-level and registered via promauto at init,
// so every package can increment them without wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsdesk"

var (
	// HTTPRequestsTotal counts finished HTTP requests by method, route
	// pattern, and status code. The route pattern ("/api/articles/{id}") is
	// used instead of the raw path to keep cardinality bounded.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed, by method, route, and status.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds, by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// HTTPRequestsInFlight gauges requests currently being served.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		},
	)

	// ArticlesCreated counts created articles by their initial status
	// (approved for admin authors, pending for employees).
	ArticlesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_created_total",
			Help:      "Total articles created, by initial status.",
		},
		[]string{"status"},
	)

	// ArticleStatusChanges counts editorial status transitions.
	ArticleStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "article_status_changes_total",
			Help:      "Total article status transitions, by origin and target status.",
		},
		[]string{"from", "to"},
	)

	// CommentsCreated counts posted comments.
	CommentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Total comments posted.",
		},
	)

	// LoginsTotal counts login attempts by method (password, github) and
	// outcome (success, failure).
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Total login attempts, by method and outcome.",
		},
		[]string{"method", "outcome"},
	)
)
