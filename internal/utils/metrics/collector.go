// internal/utils/metrics/collector.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "launched_admin"

// Collector owns the engine's Prometheus metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	settlements        *prometheus.CounterVec
	settlementDuration prometheus.Histogram
	submissions        *prometheus.CounterVec
	rpcLatency         *prometheus.HistogramVec
	scanDuration       prometheus.Histogram
	curvesScanned      *prometheus.GaugeVec
	lockContention     prometheus.Counter
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// NewCollector registers all metrics on a fresh registry together with the Go runtime collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Graduation settlements by final state",
		}, []string{"state"}),
		settlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_duration_seconds",
			Help:      "Wall time of one settlement including confirmations",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "On-chain instruction submissions by instruction and status",
		}, []string{"instruction", "status"}),
		rpcLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_latency_seconds",
			Help:      "RPC request latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "status"}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Duration of a full bonding curve scan",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		curvesScanned: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "curves_last_scan",
			Help:      "Bonding curves seen by the last scan",
		}, []string{"result"}),
		lockContention: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_lock_rejections_total",
			Help:      "Settle requests rejected because the mint was locked",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 1, 2.5, 10, 30, 60},
		}, []string{"method", "path"}),
	}
}

// Registry exposes the registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordSettlement counts a finished settlement.
func (c *Collector) RecordSettlement(state string, duration time.Duration) {
	c.settlements.WithLabelValues(state).Inc()
	c.settlementDuration.Observe(duration.Seconds())
}

// RecordSubmission counts one instruction submission.
func (c *Collector) RecordSubmission(instruction string, err error) {
	c.submissions.WithLabelValues(instruction, status(err)).Inc()
}

// ObserveRPC records the latency of one RPC call.
func (c *Collector) ObserveRPC(method string, duration time.Duration, err error) {
	c.rpcLatency.WithLabelValues(method, status(err)).Observe(duration.Seconds())
}

// RecordScan records a listing scan.
func (c *Collector) RecordScan(duration time.Duration, eligible, skipped int) {
	c.scanDuration.Observe(duration.Seconds())
	c.curvesScanned.WithLabelValues("eligible").Set(float64(eligible))
	c.curvesScanned.WithLabelValues("skipped").Set(float64(skipped))
}

// RecordLockContention counts a settle request rejected by the per-mint lock.
func (c *Collector) RecordLockContention() {
	c.lockContention.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Middleware records request counts and latency per chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		c.httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		c.httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "failed"
	}
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
