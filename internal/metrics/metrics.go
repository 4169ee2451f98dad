// Package metrics records split runs as Prometheus metrics. A one-shot CLI
// has no scrape endpoint, so the registry is written to a node_exporter
// textfile when the run ends.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "video_segmenter"

// Recorder holds the collectors for one registry.
type Recorder struct {
	RunsTotal            *prometheus.CounterVec
	SegmentsTotal        *prometheus.CounterVec
	SegmentDuration      *prometheus.HistogramVec
	ModeEscalations      prometheus.Counter
	ResolutionFallbacks  prometheus.Counter
	LowDiskSpaceWarnings prometheus.Counter
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of split runs by final status",
			},
			[]string{"status", "reason"},
		),
		SegmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "segments_total",
				Help:      "Total number of segments attempted by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		SegmentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "segment_duration_seconds",
				Help:      "Wall time spent writing one segment",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"mode"},
		),
		ModeEscalations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mode_escalations_total",
				Help:      "Runs switched from fast to precise because reframing was requested",
			},
		),
		ResolutionFallbacks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolution_fallbacks_total",
				Help:      "Probes that fell back to the default resolution",
			},
		),
		LowDiskSpaceWarnings: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "low_disk_space_warnings_total",
				Help:      "Runs started with less free space than the source size",
			},
		),
	}
}

// ObserveRun counts a finished run. reason is empty for completed runs.
func (r *Recorder) ObserveRun(status, reason string) {
	if r == nil {
		return
	}
	r.RunsTotal.WithLabelValues(status, reason).Inc()
}

func (r *Recorder) ObserveSegment(mode, outcome string, seconds float64) {
	if r == nil {
		return
	}
	r.SegmentsTotal.WithLabelValues(mode, outcome).Inc()
	r.SegmentDuration.WithLabelValues(mode).Observe(seconds)
}

func (r *Recorder) ObserveEscalation() {
	if r == nil {
		return
	}
	r.ModeEscalations.Inc()
}

func (r *Recorder) ObserveResolutionFallback() {
	if r == nil {
		return
	}
	r.ResolutionFallbacks.Inc()
}

func (r *Recorder) ObserveLowDiskSpace() {
	if r == nil {
		return
	}
	r.LowDiskSpaceWarnings.Inc()
}

// WriteTextfile writes everything gathered from g to path in the text
// exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return errors.Wrapf(err, "writing metrics to %s", path)
	}
	return nil
}
