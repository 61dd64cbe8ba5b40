package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UnknownRoute labels requests that matched no route.
const UnknownRoute = "unknown"

// HTTPMetrics records served HTTP requests.
type HTTPMetrics interface {
	// RecordRequest counts one request and observes its duration. route is
	// the matched route pattern, never the raw path.
	RecordRequest(method, route string, status int, d time.Duration)
}

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP collectors with registry.
func NewHTTPMetrics(registry prometheus.Registerer) HTTPMetrics {
	factory := promauto.With(registry)

	return &httpMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cixvault",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status_code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cixvault",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status_code"}),
	}
}

func (m *httpMetrics) RecordRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = UnknownRoute
	}
	code := strconv.Itoa(status)
	m.requests.WithLabelValues(method, route, code).Inc()
	m.duration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

// NopHTTP returns an HTTPMetrics that records nothing.
func NopHTTP() HTTPMetrics {
	return nopHTTPMetrics{}
}

type nopHTTPMetrics struct{}

func (nopHTTPMetrics) RecordRequest(string, string, int, time.Duration) {}

// Handler serves the collectors of gatherer in the Prometheus exposition
// format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
