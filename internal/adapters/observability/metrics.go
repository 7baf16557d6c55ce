package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"brooklyn_demand/internal/domain"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "brooklyn", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brooklyn", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	WarehouseQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "brooklyn", Name: "warehouse_queries_total", Help: "Warehouse queries."},
		[]string{"dataset", "outcome"},
	)
	WarehouseLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brooklyn", Name: "warehouse_query_duration_seconds",
			Help:    "Warehouse query duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dataset"},
	)
	PassLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brooklyn", Name: "pass_duration_seconds",
			Help:    "Dashboard pass duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pass", "outcome"},
	)
	UnmatchedFeatures = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "brooklyn", Name: "unmatched_features", Help: "ZIP polygons without a demand score in the last pass."},
		[]string{"pct"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "brooklyn", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

// Serve exposes the default registry on a separate listener. Empty addr disables it.
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, WarehouseQueries, WarehouseLatency,
		PassLatency, UnmatchedFeatures, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveWarehouse(dataset string, err error, dur time.Duration) {
	WarehouseQueries.WithLabelValues(dataset, Outcome(err)).Inc()
	WarehouseLatency.WithLabelValues(dataset).Observe(dur.Seconds())
}

func ObservePass(pass string, err error, dur time.Duration) {
	PassLatency.WithLabelValues(pass, Outcome(err)).Observe(dur.Seconds())
}

func SetUnmatched(pct, n int) {
	UnmatchedFeatures.WithLabelValues(strconv.Itoa(pct)).Set(float64(n))
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

// Outcome buckets an error into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrDatasetNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrMalformedGeoJSON), errors.Is(err, domain.ErrMalformedDataset):
		return "malformed"
	default:
		return "error"
	}
}
