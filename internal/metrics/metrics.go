// Package metrics instruments dataset generation with Prometheus collectors.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/san-kum/diffgen/internal/pipeline"
)

// Recorder implements pipeline.Observer.
type Recorder struct {
	// Trajectories started, by initial-condition variant.
	Trajectories *prometheus.CounterVec

	// Samples emitted.
	Samples prometheus.Counter

	// Substeps per reference step.
	Substeps prometheus.Histogram

	// Macro interval per sample, by mu.
	Tau *prometheus.HistogramVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		Trajectories: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diffgen_trajectories_total",
			Help: "Trajectories started, by initial-condition variant",
		}, []string{"ic_type"}),

		Samples: f.NewCounter(prometheus.CounterOpts{
			Name: "diffgen_samples_total",
			Help: "Samples written to the output streams",
		}),

		Substeps: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "diffgen_substeps",
			Help:    "Explicit substeps taken per reference step",
			Buckets: prometheus.ExponentialBuckets(8, 2, 10),
		}),

		Tau: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "diffgen_tau",
			Help:    "Macro time interval advanced per sample",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 12),
		}, []string{"mu"}),
	}
}

func (r *Recorder) OnTrajectory(tr *pipeline.Trajectory) {
	if r != nil {
		r.Trajectories.WithLabelValues(tr.Variant.String()).Inc()
	}
}

func (r *Recorder) OnSample(s *pipeline.Sample) {
	if r == nil {
		return
	}
	r.Samples.Inc()
	r.Substeps.Observe(float64(s.Record.KUsedRef))
	r.Tau.WithLabelValues(formatMu(s.Record.Mu)).Observe(float64(s.Record.Tau))
}

func formatMu(mu float32) string {
	return strconv.FormatFloat(float64(mu), 'g', -1, 32)
}
