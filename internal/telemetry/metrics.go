package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bff"

// Collector owns the Prometheus registry and every metric the BFF exports.
//
// Metrics:
//   - bff_http_requests_total: inbound requests by route, method, code
//   - bff_http_request_duration_seconds: inbound latency by route, method
//   - bff_upstream_requests_total: outbound calls by service, method, code
//   - bff_upstream_request_duration_seconds: outbound latency by service, method
//   - bff_auth_events_total: auth flow outcomes by event, outcome
type Collector struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	authEvents       *prometheus.CounterVec
}

// NewCollector creates and registers all metrics. A nil registry gets a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of inbound HTTP requests",
			},
			[]string{"route", "method", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of inbound HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total number of calls to downstream services",
			},
			[]string{"service", "method", "code"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Duration of calls to downstream services in seconds",
				// Analytics aggregations can take most of a minute.
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"service", "method"},
		),
		authEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "events_total",
				Help:      "Auth flow events by outcome",
			},
			[]string{"event", "outcome"},
		),
	}

	registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.upstreamRequests,
		c.upstreamDuration,
		c.authEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// InstrumentHandler wraps an inbound handler with request count and latency metrics
// labelled with the given route.
func (c *Collector) InstrumentHandler(route string, next http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerCounter(
		c.httpRequests.MustCurryWith(labels),
		promhttp.InstrumentHandlerDuration(c.httpDuration.MustCurryWith(labels), next),
	)
}

// InstrumentTransport wraps an outbound transport with call count and latency metrics
// labelled with the downstream service name.
func (c *Collector) InstrumentTransport(service string, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	labels := prometheus.Labels{"service": service}
	return promhttp.InstrumentRoundTripperCounter(
		c.upstreamRequests.MustCurryWith(labels),
		promhttp.InstrumentRoundTripperDuration(c.upstreamDuration.MustCurryWith(labels), next),
	)
}

// AuthEvent counts one auth flow outcome, e.g. ("callback", "success").
func (c *Collector) AuthEvent(event, outcome string) {
	c.authEvents.WithLabelValues(event, outcome).Inc()
}
