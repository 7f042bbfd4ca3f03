// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes recorded by RunsTotal.
const (
	OutcomeProduced = "produced"
	OutcomeCached   = "cached"
	OutcomeFailed   = "failed"
)

// Metrics holds the run metrics in a private registry, so several
// pipelines (and tests) never collide on the default registry.
type Metrics struct {
	Registry *prometheus.Registry

	// RecordsFetched counts raw records per source.
	RecordsFetched *prometheus.CounterVec

	// SourceFailures counts failed or timed-out adapter calls per source.
	SourceFailures *prometheus.CounterVec

	// Drops counts candidates removed per reason.
	Drops *prometheus.CounterVec

	// PapersSelected counts papers published across runs.
	PapersSelected prometheus.Counter

	// RunsTotal counts ProduceWeek calls per outcome.
	RunsTotal *prometheus.CounterVec

	// RunDuration observes produced runs in seconds.
	RunDuration prometheus.Histogram
}

// NewMetrics creates and registers the metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		RecordsFetched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "research_digest",
			Name:      "records_fetched_total",
			Help:      "Raw records returned by source adapters.",
		}, []string{"source"}),
		SourceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "research_digest",
			Name:      "source_failures_total",
			Help:      "Adapter calls that failed or timed out.",
		}, []string{"source"}),
		Drops: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "research_digest",
			Name:      "candidates_dropped_total",
			Help:      "Candidates removed before selection, by reason.",
		}, []string{"reason"}),
		PapersSelected: f.NewCounter(prometheus.CounterOpts{
			Namespace: "research_digest",
			Name:      "papers_selected_total",
			Help:      "Papers published in weekly runs.",
		}),
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "research_digest",
			Name:      "runs_total",
			Help:      "ProduceWeek calls by outcome.",
		}, []string{"outcome"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "research_digest",
			Name:      "run_duration_seconds",
			Help:      "Duration of produced runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
	}
}

// WriteTextfile writes the registry in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
