package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"statsboard-backend/pkg/util/logger"
)

var log = logger.New("metrics")

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	queueDepth       prometheus.Gauge
	dispatchedTotal  *prometheus.CounterVec
	retriesTotal     prometheus.Counter
	retryDelay       prometheus.Histogram
	pacingWait       prometheus.Histogram
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

var _ Sink = (*PrometheusSink)(nil)

// NewPrometheusSink creates the governor and upstream collectors and registers them with reg.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "statsboard_governor_queue_depth",
			Help: "Number of work units waiting for dispatch.",
		}),
		dispatchedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statsboard_governor_dispatched_total",
			Help: "Total number of work units completed, by outcome.",
		}, []string{"outcome"}),
		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "statsboard_governor_retries_total",
			Help: "Total number of rate-limit retries scheduled.",
		}),
		retryDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statsboard_governor_retry_delay_seconds",
			Help:    "Backoff delay chosen before a retry.",
			Buckets: []float64{0.3, 0.5, 1, 2, 4, 8, 16},
		}),
		pacingWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statsboard_governor_pacing_wait_seconds",
			Help:    "Time a dispatch waited to honour the minimum request interval.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.3},
		}),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statsboard_upstream_requests_total",
			Help: "Total number of requests sent to the analytics provider.",
		}, []string{"endpoint", "status_class"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statsboard_upstream_request_duration_seconds",
			Help:    "Duration of analytics provider requests.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
	}

	s.queueDepth = register(reg, s.queueDepth, "statsboard_governor_queue_depth")
	s.dispatchedTotal = register(reg, s.dispatchedTotal, "statsboard_governor_dispatched_total")
	s.retriesTotal = register(reg, s.retriesTotal, "statsboard_governor_retries_total")
	s.retryDelay = register(reg, s.retryDelay, "statsboard_governor_retry_delay_seconds")
	s.pacingWait = register(reg, s.pacingWait, "statsboard_governor_pacing_wait_seconds")
	s.upstreamTotal = register(reg, s.upstreamTotal, "statsboard_upstream_requests_total")
	s.upstreamDuration = register(reg, s.upstreamDuration, "statsboard_upstream_request_duration_seconds")
	return s
}

// register returns the already-registered collector when c is a duplicate, so several sinks
// built against the same registry share series instead of failing.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		log.Warnw("failed to register collector", "collector", name, "error", err)
	}
	return c
}

func (s *PrometheusSink) QueueDepth(depth int) {
	s.queueDepth.Set(float64(depth))
}

func (s *PrometheusSink) Dispatched(outcome string) {
	s.dispatchedTotal.WithLabelValues(outcome).Inc()
}

func (s *PrometheusSink) RetryScheduled(delay time.Duration) {
	s.retriesTotal.Inc()
	s.retryDelay.Observe(delay.Seconds())
}

func (s *PrometheusSink) PacingWait(delay time.Duration) {
	s.pacingWait.Observe(delay.Seconds())
}

func (s *PrometheusSink) UpstreamRequest(endpoint string, statusClass string, duration time.Duration) {
	s.upstreamTotal.WithLabelValues(endpoint, statusClass).Inc()
	s.upstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
