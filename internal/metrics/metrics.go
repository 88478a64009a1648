// Package metrics exposes processing metrics in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datasweeper"

// Outcome labels for processed files.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Recorder owns a private registry so tests and multiple servers in one
// process do not collide on the global one.
type Recorder struct {
	registry *prometheus.Registry

	files    *prometheus.CounterVec
	rows     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "Files run through the pipeline, by source format, target format and outcome.",
		}, []string{"source", "target", "outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_processed_total",
			Help:      "Data rows parsed from uploaded files, by source format.",
		}, []string{"source"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_processing_seconds",
			Help:      "Time spent parsing, cleaning and exporting one file.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"source"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.files, r.rows, r.duration, r.requests,
	)
	return r
}

// ObserveFile records one processed file. source or target may be empty when
// the file failed before they were known.
func (r *Recorder) ObserveFile(source, target, outcome string, rows int, d time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if target == "" {
		target = "none"
	}
	r.files.WithLabelValues(source, target, outcome).Inc()
	if rows > 0 {
		r.rows.WithLabelValues(source).Add(float64(rows))
	}
	r.duration.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveRequest records a finished HTTP request.
func (r *Recorder) ObserveRequest(route, method string, status int) {
	r.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// RegisterGauge exposes a value sampled at scrape time, such as limiter occupancy.
func (r *Recorder) RegisterGauge(name, help string, fn func() float64) error {
	return r.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
