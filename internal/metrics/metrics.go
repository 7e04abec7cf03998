// Package metrics exposes Prometheus instruments for the catalog and the
// HTTP layer. A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	CatalogQueries  *prometheus.CounterVec
	CatalogDuration *prometheus.HistogramVec
	LikeToggles     *prometheus.CounterVec
}

// New creates a collector with its own registry, so tests can build as many
// as they like.
func New(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CatalogQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_queries_total",
			Help:      "Recipe listings by applied criterion and outcome",
		}, []string{"criterion", "outcome"}),
		CatalogDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_query_duration_seconds",
			Help:      "Recipe listing latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"criterion"}),
		LikeToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "like_toggles_total",
			Help:      "Like toggles by counter mode and outcome",
		}, []string{"mode", "outcome"}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.CatalogQueries,
		c.CatalogDuration,
		c.LikeToggles,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveQuery(criterion, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.CatalogQueries.WithLabelValues(criterion, outcome).Inc()
	c.CatalogDuration.WithLabelValues(criterion).Observe(d.Seconds())
}

func (c *Collector) ObserveLike(mode, outcome string) {
	if c == nil {
		return
	}
	c.LikeToggles.WithLabelValues(mode, outcome).Inc()
}

func (c *Collector) ObserveHTTP(method, route, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
