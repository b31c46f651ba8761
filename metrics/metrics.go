// Package metrics exports probe outcomes in the Prometheus text format from a
// private registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drblury/pingcheck/connectivity"
)

const namespace = "pingcheck"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder counts probe runs and their latency.
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lastOK   *prometheus.GaugeVec
}

// Option configures a Recorder.
type Option func(*options)

type options struct {
	runtimeCollectors bool
	buckets           []float64
}

// WithRuntimeCollectors also exports Go runtime and process metrics.
func WithRuntimeCollectors() Option {
	return func(o *options) {
		o.runtimeCollectors = true
	}
}

// WithBuckets replaces the latency histogram buckets, in seconds.
func WithBuckets(buckets ...float64) Option {
	return func(o *options) {
		if len(buckets) > 0 {
			o.buckets = buckets
		}
	}
}

// New creates a Recorder backed by its own registry.
func New(opts ...Option) *Recorder {
	settings := &options{
		buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}

	reg := prometheus.NewRegistry()
	if settings.runtimeCollectors {
		reg.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	}

	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_runs_total",
			Help:      "Database probe runs by driver, outcome, and failure kind.",
		}, []string{"driver", "outcome", "kind"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Time from connect to ping completion.",
			Buckets:   settings.buckets,
		}, []string{"driver"}),
		lastOK: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_up",
			Help:      "1 when the most recent probe succeeded, 0 otherwise.",
		}, []string{"driver"}),
	}
}

// Observe records one report. It satisfies connectivity.Observer.
func (r *Recorder) Observe(report connectivity.Report) {
	driver := report.Driver
	if driver == "" {
		driver = "unknown"
	}

	outcome, kind, up := OutcomeSuccess, "", 1.0
	if !report.OK {
		outcome, up = OutcomeFailure, 0
		if report.Error != nil {
			kind = string(report.Error.Kind)
		}
	}

	r.runs.WithLabelValues(driver, outcome, kind).Inc()
	r.duration.WithLabelValues(driver).Observe(report.Latency.Seconds())
	r.lastOK.WithLabelValues(driver).Set(up)
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
