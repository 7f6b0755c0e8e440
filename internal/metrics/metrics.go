// Package metrics counts normalization results in a Prometheus registry and
// exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"romnorm/internal/normalize"
)

// Recorder implements normalize.Observer.
type Recorder struct {
	registry   *prometheus.Registry
	items      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	runs       *prometheus.CounterVec
	lastRunEnd prometheus.Gauge
}

// NewRecorder builds a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "romnorm_items_total",
				Help: "Plan items processed, by result status.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "romnorm_conversion_duration_seconds",
				Help:    "Wall time of converter processes.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600},
			},
			[]string{"converter_id"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "romnorm_runs_total",
				Help: "Normalization runs, by outcome.",
			},
			[]string{"outcome"},
		),
		lastRunEnd: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "romnorm_last_run_timestamp_seconds",
				Help: "Unix time the last normalization run finished.",
			},
		),
	}
	r.registry.MustRegister(r.items, r.duration, r.runs, r.lastRunEnd)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveResult implements normalize.Observer.
func (r *Recorder) ObserveResult(result normalize.ResultItem) {
	r.items.WithLabelValues(string(result.Status)).Inc()
	if result.Duration > 0 && result.ConverterID != "" {
		r.duration.WithLabelValues(result.ConverterID).Observe(result.Duration.Seconds())
	}
}

// ObserveReport records the run-level outcome of report.
func (r *Recorder) ObserveReport(report normalize.Report) {
	outcome := "completed"
	switch {
	case report.Cancelled:
		outcome = "cancelled"
	case report.Failed > 0:
		outcome = "completed_with_failures"
	}
	r.runs.WithLabelValues(outcome).Inc()
	if !report.FinishedAt.IsZero() {
		r.lastRunEnd.Set(float64(report.FinishedAt.Unix()))
	}
}

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
