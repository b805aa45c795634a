package observability

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Weather Underground API call rate per pipeline stage. Watch for: error vs success ratio.
	UpstreamCallsTotal *prometheus.CounterVec

	// Upstream latency per stage. Watch for: p95 > 2s (upstream degradation), p99 > timeout.
	UpstreamCallDuration *prometheus.HistogramVec

	// Upstream errors by stage and category (timeout, station_not_found, upstream_5xx, ...).
	UpstreamErrorsTotal *prometheus.CounterVec

	// Total station fetch pipelines started. rate() gives fetch QPS.
	FetchesTotal prometheus.Counter

	// Per-station fetch count (allow-list; others go to "other").
	FetchesByStationTotal *prometheus.CounterVec

	// Events dropped because a newer fetch superseded their generation.
	StaleEventsDroppedTotal prometheus.Counter

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter

	// trackedStations is built from config; used to resolve station ids for metrics.
	trackedStationsMu sync.RWMutex
	trackedStations   map[string]struct{}
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamCallsTotal",
			Help: "Total number of Weather Underground API calls",
		},
		[]string{"stage", "status"},
	)
	UpstreamCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamCallDurationSeconds",
			Help:    "Weather Underground API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"stage", "status"},
	)
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamErrorsTotal",
			Help: "Upstream call errors by pipeline stage and error category",
		},
		[]string{"stage", "category"},
	)
	FetchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fetchesTotal",
			Help: "Total number of station fetch pipelines started",
		},
	)
	FetchesByStationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetchesByStationTotal",
			Help: "Fetches by station id (allow-list; others use station=other)",
		},
		[]string{"station"},
	)
	StaleEventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "staleEventsDroppedTotal",
			Help: "Fetch events dropped because a newer fetch superseded them",
		},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamCallDuration, UpstreamErrorsTotal,
		FetchesTotal, FetchesByStationTotal, StaleEventsDroppedTotal,
		RateLimitDeniedTotal,
	)
}

// SetTrackedStations sets the allow-list for per-station metrics.
// Non-tracked stations increment "other".
func SetTrackedStations(stations []string) {
	trackedStationsMu.Lock()
	defer trackedStationsMu.Unlock()
	trackedStations = make(map[string]struct{}, len(stations))
	for _, s := range stations {
		trackedStations[normalizeStationForMetrics(s)] = struct{}{}
	}
}

// RecordFetch records the start of a fetch pipeline for the given station.
func RecordFetch(stationID string) {
	FetchesTotal.Inc()
	FetchesByStationTotal.WithLabelValues(MetricStationLabel(stationID)).Inc()
}

// MetricStationLabel resolves a station id to its metric label: the id
// itself when tracked, "other" otherwise (keeps cardinality bounded).
func MetricStationLabel(stationID string) string {
	s := normalizeStationForMetrics(stationID)
	trackedStationsMu.RLock()
	_, ok := trackedStations[s] // nil map read is safe in Go
	trackedStationsMu.RUnlock()
	if ok {
		return s
	}
	return "other"
}

func normalizeStationForMetrics(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
