package http

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog/log"
)

// MetricsRegistry holds all Prometheus metrics for DrawRun.
type MetricsRegistry struct {
	registry *prometheus.Registry

	// Engine throughput
	SeedsTotal      *prometheus.CounterVec
	CandidatesTotal prometheus.Counter
	VariantsTotal   prometheus.Counter

	// Run lifecycle
	ActiveRuns  prometheus.Gauge
	TotalRuns   prometheus.Counter
	RunDuration prometheus.Histogram
}

// NewMetricsRegistry creates the registry with all DrawRun metrics
// registered on a private Prometheus registry.
func NewMetricsRegistry() *MetricsRegistry {
	m := &MetricsRegistry{
		registry: prometheus.NewRegistry(),

		SeedsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drawrun_seeds_completed_total",
				Help: "Ensemble seeds finished, by outcome",
			},
			[]string{"outcome"},
		),

		CandidatesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "drawrun_candidates_generated_total",
				Help: "Candidate events drawn across all pools",
			},
		),

		VariantsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "drawrun_refiner_variants_total",
				Help: "Local-search variants evaluated",
			},
		),

		ActiveRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "drawrun_active_runs",
				Help: "Prediction runs currently in flight",
			},
		),

		TotalRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "drawrun_runs_total",
				Help: "Prediction runs started since process start",
			},
		),

		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "drawrun_run_duration_seconds",
				Help:    "End-to-end duration of a prediction run",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
	}

	m.registry.MustRegister(
		m.SeedsTotal,
		m.CandidatesTotal,
		m.VariantsTotal,
		m.ActiveRuns,
		m.TotalRuns,
		m.RunDuration,
	)

	log.Debug().Msg("metrics registry initialized")
	return m
}

// Registry exposes the underlying Prometheus registry for the HTTP handler.
func (m *MetricsRegistry) Registry() *prometheus.Registry {
	return m.registry
}

// SeedCompleted implements ensemble.Recorder.
func (m *MetricsRegistry) SeedCompleted(outcome string) {
	m.SeedsTotal.WithLabelValues(outcome).Inc()
}

// CandidatesGenerated implements ensemble.Recorder.
func (m *MetricsRegistry) CandidatesGenerated(n int) {
	m.CandidatesTotal.Add(float64(n))
}

// VariantsEvaluated implements ensemble.Recorder.
func (m *MetricsRegistry) VariantsEvaluated(n int) {
	m.VariantsTotal.Add(float64(n))
}

// GatherValue reads one gathered metric's first sample, used by tests and
// the ops status endpoint.
func (m *MetricsRegistry) GatherValue(name string) (float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return 0, fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			return sampleValue(fam.GetType(), metric), nil
		}
	}
	return 0, fmt.Errorf("metric %s not found", name)
}

func sampleValue(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}
