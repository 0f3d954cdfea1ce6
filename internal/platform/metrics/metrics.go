// Package metrics exposes Prometheus metrics for provider requests and cache lookups.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records provider and cache metrics on its own registry.
// A nil *Recorder is a no-op.
type Recorder struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its collectors plus the Go and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "btcdata",
			Name:      "provider_requests_total",
			Help:      "Upstream provider requests by outcome",
		}, []string{"source", "operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "btcdata",
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream provider request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "operation"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "btcdata",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
	}
	r.registry.MustRegister(
		r.requests,
		r.duration,
		r.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveProviderRequest records one upstream request.
func (r *Recorder) ObserveProviderRequest(source, operation, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(source, operation, status).Inc()
	r.duration.WithLabelValues(source, operation).Observe(elapsed.Seconds())
}

// ObserveCacheLookup records one cache lookup result.
func (r *Recorder) ObserveCacheLookup(result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
