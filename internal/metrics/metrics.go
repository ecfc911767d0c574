package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aleister1102/ayumi/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Recorder collects per-run counters in a private registry and exports them
// in the node_exporter textfile format
type Recorder struct {
	registry *prometheus.Registry
	logger   zerolog.Logger

	findingsTotal  *prometheus.CounterVec
	targetsRaw     *prometheus.GaugeVec
	targetsUnique  *prometheus.GaugeVec
	actionDuration *prometheus.GaugeVec
	actionFailures *prometheus.CounterVec
	runDuration    prometheus.Gauge
	runTimestamp   prometheus.Gauge

	mu sync.Mutex
}

// NewRecorder creates a Recorder with all collectors registered
func NewRecorder(logger zerolog.Logger) (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		logger:   logger.With().Str("component", "Metrics").Logger(),
	}

	r.findingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ayumi_findings_total",
			Help: "Findings written to the result stream",
		},
		[]string{"action", "severity"},
	)
	r.targetsRaw = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ayumi_targets_raw",
			Help: "Targets handed to an action before deduplication",
		},
		[]string{"action"},
	)
	r.targetsUnique = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ayumi_targets_unique",
			Help: "Targets left after deduplication",
		},
		[]string{"action"},
	)
	r.actionDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ayumi_action_duration_seconds",
			Help: "Wall-clock duration of an action branch",
		},
		[]string{"action", "status"},
	)
	r.actionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ayumi_action_failures_total",
			Help: "Action branches that ended in FAILED",
		},
		[]string{"action"},
	)
	r.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ayumi_run_duration_seconds",
		Help: "Wall-clock duration of the last run",
	})
	r.runTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ayumi_run_last_timestamp_seconds",
		Help: "Unix time the last run started",
	})

	collectors := []prometheus.Collector{
		r.findingsTotal,
		r.targetsRaw,
		r.targetsUnique,
		r.actionDuration,
		r.actionFailures,
		r.runDuration,
		r.runTimestamp,
	}
	for _, c := range collectors {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return r, nil
}

// ObserveFinding counts one emitted finding
func (r *Recorder) ObserveFinding(action string, sev models.Severity) {
	r.findingsTotal.WithLabelValues(action, string(sev)).Inc()
}

// ObserveAction records the counters of a finished branch
func (r *Recorder) ObserveAction(a models.ActionSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.targetsRaw.WithLabelValues(a.Action).Set(float64(a.RawTargets))
	r.targetsUnique.WithLabelValues(a.Action).Set(float64(a.UniqueTargets))
	r.actionDuration.WithLabelValues(a.Action, string(a.Status)).Set(a.Duration.Seconds())
	if a.Status == models.RunStatusFailed {
		r.actionFailures.WithLabelValues(a.Action).Inc()
	}
}

// ObserveRun records run-level gauges
func (r *Recorder) ObserveRun(s models.RunSummary) {
	r.runDuration.Set(s.Duration.Seconds())
	if !s.StartedAt.IsZero() {
		r.runTimestamp.Set(float64(s.StartedAt.Unix()))
	}
}

// Registry exposes the underlying registry, mostly for tests
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the registry to path atomically. The directory is
// created when missing.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	r.logger.Info().Str("path", path).Msg("Metrics textfile written")
	return nil
}
