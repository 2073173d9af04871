// Package metrics provides Prometheus metrics for the prediction and
// grading engines.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/rickspicks/cfb-engine/pkg/cfb"
)

// EngineMetrics collects and exposes engine-related Prometheus metrics.
type EngineMetrics struct {
	registry *prometheus.Registry

	// Prediction metrics
	PredictionsTotal   *prometheus.CounterVec
	PredictionFailures prometheus.Counter
	SpreadEdge         prometheus.Histogram
	TotalEdge          prometheus.Histogram

	// Batch metrics
	BatchRuns     prometheus.Counter
	BatchDuration prometheus.Histogram
	TopPlays      prometheus.Gauge

	// Grading metrics
	GradesTotal  *prometheus.CounterVec
	UnitsNet     prometheus.Gauge
	GradedPushes prometheus.Counter
}

// NewEngineMetrics creates and registers the engine metrics.
func NewEngineMetrics() *EngineMetrics {
	registry := prometheus.NewRegistry()

	m := &EngineMetrics{
		registry: registry,

		PredictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfb_predictions_total",
				Help: "Total predictions produced, by confidence tier",
			},
			[]string{"tier"},
		),
		PredictionFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cfb_prediction_failures_total",
				Help: "Games that failed prediction inside a batch",
			},
		),
		SpreadEdge: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cfb_spread_edge_points",
				Help:    "Distance between predicted margin and market line",
				Buckets: prometheus.LinearBuckets(0, 1, 12),
			},
		),
		TotalEdge: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cfb_total_edge_points",
				Help:    "Distance between predicted total and market total",
				Buckets: prometheus.LinearBuckets(0, 1, 12),
			},
		),
		BatchRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cfb_batch_runs_total",
				Help: "Batch prediction runs",
			},
		),
		BatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cfb_batch_duration_seconds",
				Help:    "Batch prediction run duration",
				Buckets: prometheus.DefBuckets,
			},
		),
		TopPlays: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cfb_top_plays",
				Help: "Top plays surfaced by the most recent batch run",
			},
		),
		GradesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfb_grades_total",
				Help: "Graded games, by spread outcome",
			},
			[]string{"spread_outcome"},
		),
		UnitsNet: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cfb_units_net",
				Help: "Net units across graded picks",
			},
		),
		GradedPushes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cfb_graded_pushes_total",
				Help: "Graded picks refunded as pushes",
			},
		),
	}

	registry.MustRegister(
		m.PredictionsTotal,
		m.PredictionFailures,
		m.SpreadEdge,
		m.TotalEdge,
		m.BatchRuns,
		m.BatchDuration,
		m.TopPlays,
		m.GradesTotal,
		m.UnitsNet,
		m.GradedPushes,
	)

	return m
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPrediction records one successful prediction.
func (m *EngineMetrics) RecordPrediction(p *cfb.Prediction) {
	m.PredictionsTotal.WithLabelValues(string(p.ConfidenceTier)).Inc()
	m.SpreadEdge.Observe(p.SpreadEdge)
	m.TotalEdge.Observe(p.TotalEdge)
}

// RecordBatch records the outcome of one batch run.
func (m *EngineMetrics) RecordBatch(elapsed time.Duration, failures, topPlays int) {
	m.BatchRuns.Inc()
	m.BatchDuration.Observe(elapsed.Seconds())
	m.PredictionFailures.Add(float64(failures))
	m.TopPlays.Set(float64(topPlays))
}

// RecordGrade records one graded game and the running unit total.
func (m *EngineMetrics) RecordGrade(res *cfb.GradingResult, runningUnits decimal.Decimal) {
	if res.SpreadOutcome != "" {
		m.GradesTotal.WithLabelValues(string(res.SpreadOutcome)).Inc()
	}
	if res.SpreadOutcome == cfb.SpreadPush || res.TotalOutcome == cfb.TotalPush {
		m.GradedPushes.Inc()
	}
	m.UnitsNet.Set(runningUnits.InexactFloat64())
}
