package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sesskeep"

// Metrics holds all application metrics on a private registry.
//
// It implements the session store's Recorder interface, so wiring it
// into the store is a single option.
type Metrics struct {
	registry *prometheus.Registry

	sessionsCreated prometheus.Counter
	sessionsExpired prometheus.Counter

	sweepsTotal     prometheus.Counter
	sweepsContended prometheus.Counter
	sweepEvicted    prometheus.Counter
	sweepDuration   prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the metrics registry. src feeds the live-session gauge;
// pass nil to omit it.
func New(src StatsSource) (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of sessions created.",
		}),
		sessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Total number of sessions evicted for expiry.",
		}),
		sweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Total number of completed expiration sweeps.",
		}),
		sweepsContended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_contended_total",
			Help:      "Sweep attempts skipped because another sweep was running.",
		}),
		sweepEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_evicted_total",
			Help:      "Total number of sessions evicted by sweeps.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of expiration sweep passes.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	cs := []prometheus.Collector{
		m.sessionsCreated,
		m.sessionsExpired,
		m.sweepsTotal,
		m.sweepsContended,
		m.sweepEvicted,
		m.sweepDuration,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
	}
	if src != nil {
		cs = append(cs, newStoreCollector(src))
	}
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SessionCreated counts a session creation.
func (m *Metrics) SessionCreated() {
	m.sessionsCreated.Inc()
}

// SessionExpired counts an expiry eviction, whether from a sweep or
// from the per-lookup check.
func (m *Metrics) SessionExpired() {
	m.sessionsExpired.Inc()
}

// SweepCompleted records a finished sweep pass.
func (m *Metrics) SweepCompleted(duration time.Duration, evicted int) {
	m.sweepsTotal.Inc()
	m.sweepEvicted.Add(float64(evicted))
	m.sweepDuration.Observe(duration.Seconds())
}

// SweepContended counts a sweep attempt skipped under contention.
func (m *Metrics) SweepContended() {
	m.sweepsContended.Inc()
}

// ObserveHTTPRequest records one handled HTTP request. route is the
// registered pattern, not the raw URL, to keep cardinality bounded.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
