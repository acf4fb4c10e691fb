// pattern: Imperative Shell

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the inventory engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ScansTotal       *prometheus.CounterVec
	ScanDuration     prometheus.Histogram
	CatalogSize      prometheus.Gauge
	ClassifiedTotal  *prometheus.CounterVec
	DetectDuration   prometheus.Histogram
	MutationsTotal   *prometheus.CounterVec
	EventSubscribers prometheus.Gauge
}

// New creates the instruments and registers them on reg.
//
// Metrics:
//   - projdex_scans_total{result} - completed rescans ("ok" or "error")
//   - projdex_scan_duration_seconds - wall time of a rescan
//   - projdex_catalog_projects - projects in the last persisted snapshot
//   - projdex_classified_total{tag} - stack tags assigned by batch passes
//   - projdex_detect_duration_seconds - wall time of a batch pass
//   - projdex_mutations_total{op} - user edits applied to the catalog
//   - projdex_event_subscribers - connected progress stream clients
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ScansTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projdex_scans_total",
				Help: "Total number of workspace rescans",
			},
			[]string{"result"},
		),
		ScanDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "projdex_scan_duration_seconds",
				Help:    "Duration of workspace rescans in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
		),
		CatalogSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "projdex_catalog_projects",
				Help: "Number of projects in the persisted catalog",
			},
		),
		ClassifiedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projdex_classified_total",
				Help: "Total number of stack tags assigned",
			},
			[]string{"tag"},
		),
		DetectDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "projdex_detect_duration_seconds",
				Help:    "Duration of batch stack classification in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		MutationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projdex_mutations_total",
				Help: "Total number of catalog edits by operation",
			},
			[]string{"op"},
		),
		EventSubscribers: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "projdex_event_subscribers",
				Help: "Connected progress stream subscribers",
			},
		),
	}
}

// RecordScan records a finished rescan.
func (m *Metrics) RecordScan(seconds float64, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ScansTotal.WithLabelValues(result).Inc()
	m.ScanDuration.Observe(seconds)
}

// SetCatalogSize updates the catalog gauge.
func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.CatalogSize.Set(float64(n))
}

// RecordClassified records one batch pass and the tags it produced.
func (m *Metrics) RecordClassified(seconds float64, tags []string) {
	if m == nil {
		return
	}
	m.DetectDuration.Observe(seconds)
	for _, tag := range tags {
		m.ClassifiedTotal.WithLabelValues(tag).Inc()
	}
}

// RecordMutation counts one catalog edit.
func (m *Metrics) RecordMutation(op string) {
	if m == nil {
		return
	}
	m.MutationsTotal.WithLabelValues(op).Inc()
}

// AddSubscribers adjusts the subscriber gauge by delta.
func (m *Metrics) AddSubscribers(delta int) {
	if m == nil {
		return
	}
	m.EventSubscribers.Add(float64(delta))
}
