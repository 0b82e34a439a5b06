// Package catalogmetrics wires the registry and consolidation orchestrator
// into prometheus collectors, covering the same operations the teacher's
// nbs.Stats struct times by hand (open/close counts, entries live,
// consolidation duration, filelock wait) but expressed as real prometheus
// CounterVec/HistogramVec/Gauge collectors instead of a bespoke struct.
package catalogmetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the catalog's full collector set. The zero value is not
// usable; construct with New or NewForRegistry.
type Metrics struct {
	Opens             *prometheus.CounterVec
	Closes            *prometheus.CounterVec
	EntriesLive       prometheus.Gauge
	FirstOpenFailures *prometheus.CounterVec
	FilelockWait      *prometheus.HistogramVec
	ConsolidateDur    *prometheus.HistogramVec
	ConsolidateErrors *prometheus.CounterVec
}

// New builds a Metrics and registers its collectors with reg. Passing
// prometheus.NewRegistry() keeps tests isolated from the global default
// registry; passing prometheus.DefaultRegisterer matches normal process
// wiring.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "opens_total",
			Help:      "Number of open-object registry acquisitions, including opens that later fail, by kind.",
		}, []string{"kind"}),
		Closes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "closes_total",
			Help:      "Number of object closes, by kind.",
		}, []string{"kind"}),
		EntriesLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catalog",
			Name:      "registry_entries_live",
			Help:      "Current number of entries in the open-object registry.",
		}),
		FirstOpenFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "first_open_init_failures_total",
			Help:      "Number of first_open_init failures, by kind.",
		}, []string{"kind"}),
		FilelockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalog",
			Name:      "filelock_wait_seconds",
			Help:      "Time spent blocked acquiring the consolidation filelock.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		ConsolidateDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalog",
			Name:      "consolidate_duration_seconds",
			Help:      "End-to-end duration of the consolidation orchestrator.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		ConsolidateErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "consolidate_errors_total",
			Help:      "Number of failed consolidation runs, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.Opens,
		m.Closes,
		m.EntriesLive,
		m.FirstOpenFailures,
		m.FilelockWait,
		m.ConsolidateDur,
		m.ConsolidateErrors,
	)
	return m
}

// Noop returns a Metrics registered against a private registry, for
// callers (tests, or a catalog.Catalog built without a metrics
// dependency) that need a non-nil Metrics but don't care about scraping
// it.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}
