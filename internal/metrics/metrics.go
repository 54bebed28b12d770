// Package metrics exposes prometheus instrumentation for the dashboard.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// gatewayRequests counts remote API calls by operation and outcome.
	gatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_gateway_requests_total",
		Help: "Total number of pricing API requests by operation and outcome",
	}, []string{"op", "outcome"}) // outcome: ok, network_error, server_error

	// gatewayDuration tracks the latency of remote API calls.
	gatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_gateway_request_duration_seconds",
		Help:    "Time taken by pricing API requests by operation",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"op"})

	// gatewayRetries counts retried transport attempts.
	gatewayRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_gateway_retries_total",
		Help: "Total number of retried pricing API attempts",
	})

	// staleResponses counts fetch completions discarded because a newer fetch superseded them.
	staleResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_stale_responses_total",
		Help: "Total number of fetch results discarded as stale",
	}, []string{"op"})

	// groupMutations counts effective group operations.
	groupMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_group_mutations_total",
		Help: "Total number of effective group mutations by operation",
	}, []string{"op"})

	// groupStoreWrites counts group record writes.
	groupStoreWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_group_store_writes_total",
		Help: "Total number of group record writes by outcome",
	}, []string{"outcome"})

	// groupStoreFallbacks counts loads that fell back to the default collection.
	groupStoreFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_group_store_fallbacks_total",
		Help: "Total number of group loads that fell back to the default collection",
	}, []string{"reason"}) // reason: missing, unreadable, malformed

	// visibleRows tracks the size of the last filtered view.
	visibleRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_visible_rows",
		Help: "Number of rows visible after filtering",
	})
)

// Recorder provides methods to record dashboard metrics.
// A nil *Recorder is valid and records nothing.
type Recorder struct{}

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordRequest records a remote API call.
func (m *Recorder) RecordRequest(op, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	gatewayRequests.WithLabelValues(op, outcome).Inc()
	gatewayDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordRetry records one retried transport attempt.
func (m *Recorder) RecordRetry() {
	if m == nil {
		return
	}
	gatewayRetries.Inc()
}

// RecordStaleResponse records a discarded fetch result.
func (m *Recorder) RecordStaleResponse(op string) {
	if m == nil {
		return
	}
	staleResponses.WithLabelValues(op).Inc()
}

// RecordGroupMutation records an effective group operation.
func (m *Recorder) RecordGroupMutation(op string) {
	if m == nil {
		return
	}
	groupMutations.WithLabelValues(op).Inc()
}

// RecordGroupWrite records a group record write.
func (m *Recorder) RecordGroupWrite(success bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	groupStoreWrites.WithLabelValues(outcome).Inc()
}

// RecordGroupFallback records a load that fell back to the default collection.
func (m *Recorder) RecordGroupFallback(reason string) {
	if m == nil {
		return
	}
	groupStoreFallbacks.WithLabelValues(reason).Inc()
}

// RecordVisibleRows records the size of the filtered view.
func (m *Recorder) RecordVisibleRows(n int) {
	if m == nil {
		return
	}
	visibleRows.Set(float64(n))
}
