package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Task metrics
	TasksTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fenwick_tasks_total",
			Help: "Total number of tasks by status",
		},
		[]string{"status"},
	)

	TasksCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fenwick_tasks_created_total",
			Help: "Total number of tasks created",
		},
	)

	TasksFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fenwick_tasks_failed_total",
			Help: "Total number of tasks that ended FAILED",
		},
	)

	SweeperCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fenwick_sweeper_cycles_total",
			Help: "Total number of expiry sweeper cycles completed",
		},
	)

	SweeperExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fenwick_sweeper_expired_total",
			Help: "Total number of tasks transitioned to COMPLETED by the sweeper",
		},
	)

	// Fleet metrics
	FleetSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fenwick_fleet_size",
			Help: "Number of workers currently registered in the fleet",
		},
	)

	FleetLiveWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fenwick_fleet_live_workers",
			Help: "Number of workers with a recent heartbeat",
		},
	)

	FailoversTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fenwick_failovers_total",
			Help: "Total number of dead-worker failover reassignments performed",
		},
	)

	// Assignment metrics
	AssignmentLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fenwick_assignment_latency_seconds",
			Help:    "Time taken to select and record a worker assignment",
			Buckets: prometheus.DefBuckets,
		},
	)

	AssignmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fenwick_assignments_total",
			Help: "Total number of per-source assignment attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Result bus metrics
	ResultBusDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fenwick_resultbus_depth",
			Help: "Current queue depth of a task's result bus",
		},
		[]string{"task_id"},
	)

	ResultBusDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fenwick_resultbus_drops_total",
			Help: "Total number of result envelopes dropped for exceeding the high-water mark",
		},
	)

	// RPC metrics
	RPCRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fenwick_rpc_requests_total",
			Help: "Total number of RPC requests by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	RPCRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fenwick_rpc_request_duration_seconds",
			Help:    "RPC request duration in seconds by method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(TasksTotal)
	prometheus.MustRegister(TasksCreatedTotal)
	prometheus.MustRegister(TasksFailedTotal)
	prometheus.MustRegister(SweeperCyclesTotal)
	prometheus.MustRegister(SweeperExpiredTotal)
	prometheus.MustRegister(FleetSize)
	prometheus.MustRegister(FleetLiveWorkers)
	prometheus.MustRegister(FailoversTotal)
	prometheus.MustRegister(AssignmentLatency)
	prometheus.MustRegister(AssignmentsTotal)
	prometheus.MustRegister(ResultBusDepth)
	prometheus.MustRegister(ResultBusDropsTotal)
	prometheus.MustRegister(RPCRequestsTotal)
	prometheus.MustRegister(RPCRequestDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
