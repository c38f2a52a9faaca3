package portalclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the request lifecycle,
// the error taxonomy and the instance cache. It is safe for concurrent use,
// and a nil collector records nothing.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	errorsTotal *prometheus.CounterVec

	instances prometheus.Gauge

	sessionExpirations prometheus.Counter

	registry prometheus.Registerer
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	mc := &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_requests_total",
				Help: "Total number of requests issued to backend services",
			},
			[]string{"service", "method", "status_code"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_request_duration_seconds",
				Help:    "Duration of backend requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "status_code"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "portal_requests_in_flight",
				Help: "Number of backend requests currently in flight",
			},
			[]string{"service"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_errors_total",
				Help: "Total number of normalized errors by code",
			},
			[]string{"service", "code"},
		),
		instances: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "portal_instances",
				Help: "Number of cached service instances",
			},
		),
		sessionExpirations: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "portal_session_expired_total",
				Help: "Total number of times an expired session was cleared",
			},
		),
		registry: registry,
	}

	return mc
}

// RecordRequest records request count and duration. A status of 0 means no
// response was received.
func (mc *MetricsCollector) RecordRequest(service, method string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(service, method, statusCodeStr).Inc()
	mc.requestDuration.WithLabelValues(service, method, statusCodeStr).Observe(duration.Seconds())
}

// RecordRequestStart increments in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(service string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(service).Inc()
}

// RecordRequestEnd decrements in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(service string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(service).Dec()
}

// RecordError increments error counter by code.
func (mc *MetricsCollector) RecordError(service, code string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(service, code).Inc()
}

// RecordInstances sets the cached instance gauge.
func (mc *MetricsCollector) RecordInstances(n int) {
	if mc == nil {
		return
	}

	mc.instances.Set(float64(n))
}

// RecordSessionExpired increments the session expiration counter.
func (mc *MetricsCollector) RecordSessionExpired() {
	if mc == nil {
		return
	}

	mc.sessionExpirations.Inc()
}

// GetRegistry exposes the underlying prometheus registry. It returns nil when
// the collector was built on a registerer that is not a *prometheus.Registry.
func (mc *MetricsCollector) GetRegistry() *prometheus.Registry {
	if mc == nil {
		return nil
	}
	reg, _ := mc.registry.(*prometheus.Registry)
	return reg
}
