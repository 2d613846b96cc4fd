// Package metrics provides Prometheus metrics for simplesearch
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for simplesearch. The Record
// methods do nothing on a nil *Metrics.
type Metrics struct {
	// Translation metrics
	TranslationsTotal *prometheus.CounterVec
	QueryTerms        prometheus.Histogram
	FieldIssuesTotal  *prometheus.CounterVec

	// Listing metrics
	ListingsTotal   *prometheus.CounterVec
	ListingDuration *prometheus.HistogramVec
	ListingResults  prometheus.Histogram

	// HTTP request metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// gRPC request metrics
	GrpcRequestsTotal   *prometheus.CounterVec
	GrpcRequestDuration *prometheus.HistogramVec

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// NewMetrics creates all metrics and registers them with reg. Passing
// prometheus.DefaultRegisterer exposes them on promhttp.Handler().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	// Translation metrics
	m.TranslationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simplesearch_translations_total",
			Help: "Total number of query-string translations",
		},
		[]string{"view", "status"},
	)

	m.QueryTerms = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simplesearch_query_terms",
			Help:    "Number of terms in free-text queries",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	m.FieldIssuesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simplesearch_field_issues_total",
			Help: "Parameters ignored because they could not be parsed",
		},
		[]string{"view", "param"},
	)

	// Listing metrics
	m.ListingsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simplesearch_listings_total",
			Help: "Total number of store listings",
		},
		[]string{"view", "status"},
	)

	m.ListingDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simplesearch_listing_duration_seconds",
			Help:    "Duration of listings including translation and store query",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"view"},
	)

	m.ListingResults = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "simplesearch_listing_results",
			Help:    "Number of records returned per listing",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// HTTP request metrics
	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simplesearch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simplesearch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.HTTPRequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "simplesearch_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// gRPC request metrics
	m.GrpcRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simplesearch_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "status"},
	)

	m.GrpcRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simplesearch_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Server metrics
	m.ServerUptimeSeconds = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "simplesearch_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	return m
}

// RunUptime updates the uptime gauge every interval until stop is closed
func (m *Metrics) RunUptime(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
		case <-stop:
			return
		}
	}
}

// RecordTranslation records one translation and the number of free-text terms
func (m *Metrics) RecordTranslation(view, status string, terms int) {
	if m == nil {
		return
	}
	m.TranslationsTotal.WithLabelValues(view, status).Inc()
	if terms > 0 {
		m.QueryTerms.Observe(float64(terms))
	}
}

// RecordFieldIssue records a parameter that was ignored
func (m *Metrics) RecordFieldIssue(view, param string) {
	if m == nil {
		return
	}
	m.FieldIssuesTotal.WithLabelValues(view, param).Inc()
}

// RecordListing records a store listing
func (m *Metrics) RecordListing(view, status string, results int, duration time.Duration) {
	if m == nil {
		return
	}
	m.ListingsTotal.WithLabelValues(view, status).Inc()
	m.ListingDuration.WithLabelValues(view).Observe(duration.Seconds())
	if status == "success" {
		m.ListingResults.Observe(float64(results))
	}
}

// RecordHTTPRequest records an HTTP request with its status
func (m *Metrics) RecordHTTPRequest(route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordGrpcRequest records a gRPC request with its status
func (m *Metrics) RecordGrpcRequest(method string, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.GrpcRequestsTotal.WithLabelValues(method, status).Inc()
	m.GrpcRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}
