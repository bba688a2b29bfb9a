// Package metrics records Prometheus metrics for outbound API calls.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_api_requests_total",
			Help: "Total number of requests issued to the forum API",
		},
		[]string{"operation", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forum_api_request_duration_seconds",
			Help:    "Forum API request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	apiRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forum_api_requests_in_flight",
			Help: "Number of forum API requests currently in flight",
		},
	)

	staleListResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forum_stale_list_responses_total",
			Help: "List responses discarded because a newer request superseded them",
		},
	)
)

// ObserveRequest records one completed API call. status is the HTTP status
// code, or 0 for a transport-level failure.
func ObserveRequest(operation string, status int, elapsed time.Duration) {
	label := "transport_error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	apiRequestsTotal.WithLabelValues(operation, label).Inc()
	apiRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func RequestStarted()  { apiRequestsInFlight.Inc() }
func RequestFinished() { apiRequestsInFlight.Dec() }

func StaleListResponse() { staleListResponses.Inc() }
