// Package metrics provides Prometheus metrics for storyscope.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storyscope"

var (
	// CacheLookups counts story cache lookups by result.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of story cache lookups",
		},
		[]string{"result"},
	)

	// UpstreamRequests counts calls to the story API.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream story API requests",
		},
		[]string{"endpoint", "status"},
	)

	// RefreshDuration measures a full identifier + item fan-out.
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of story refreshes in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// RefreshStories observes how many stories a refresh produced.
	RefreshStories = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_stories",
			Help:      "Distribution of stories kept per refresh",
			Buckets:   []float64{0, 10, 25, 50, 100, 150, 200},
		},
	)

	// HTTPRequests counts served requests by route pattern and status code.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"route", "code"},
	)
)

// RecordCacheLookup records a hit or a miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

// RecordUpstream records one upstream call outcome ("ok", "absent" or "error").
func RecordUpstream(endpoint, status string) {
	UpstreamRequests.WithLabelValues(endpoint, status).Inc()
}

// RecordRefresh records a completed refresh.
func RecordRefresh(seconds float64, stories int) {
	RefreshDuration.Observe(seconds)
	RefreshStories.Observe(float64(stories))
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route string, code int) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
