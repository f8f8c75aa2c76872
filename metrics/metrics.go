// Package metrics exposes Prometheus instrumentation for the forecasting
// pipeline. A nil *Recorder is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crypto_predict"

// Pipeline stages.
const (
	StageFetch     = "fetch"
	StageNormalize = "normalize"
	StageDiff      = "stationarity"
	StageFit       = "fit"
	StageForecast  = "forecast"
	StageAssemble  = "assemble"
)

// Recorder records pipeline metrics.
type Recorder struct {
	stageDuration *prometheus.HistogramVec
	outcomes      *prometheus.CounterVec
	imputed       *prometheus.CounterVec
	diffOrder     *prometheus.CounterVec
}

// New creates a recorder registered with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"stage"},
		),
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "forecasts_total",
				Help:      "Forecast requests by outcome",
			},
			[]string{"outcome"},
		),
		imputed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "imputed_values_total",
				Help:      "Missing values filled during normalization, per column",
			},
			[]string{"column"},
		),
		diffOrder: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "differencing_order_total",
				Help:      "Selected differencing orders",
			},
			[]string{"d"},
		),
	}
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordOutcome counts a finished request, e.g. "ok" or "model_fit".
func (r *Recorder) RecordOutcome(outcome string) {
	if r == nil {
		return
	}
	r.outcomes.WithLabelValues(outcome).Inc()
}

// RecordImputed adds n filled values for column.
func (r *Recorder) RecordImputed(column string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.imputed.WithLabelValues(column).Add(float64(n))
}

// RecordDiffOrder counts a selected differencing order.
func (r *Recorder) RecordDiffOrder(d int) {
	if r == nil {
		return
	}
	r.diffOrder.WithLabelValues(strconv.Itoa(d)).Inc()
}
