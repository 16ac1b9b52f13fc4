package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/san-kum/diffgen/internal/config"
	"github.com/san-kum/diffgen/internal/dataset"
	"github.com/san-kum/diffgen/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discard struct{}

func (discard) Write(dataset.Record, []float32, []float32) error { return nil }

func TestRecorder_CountsGeneration(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := New(reg)

	cfg := config.DefaultConfig()
	cfg.N = 8
	cfg.TrajCount = 3
	cfg.TSteps = 4
	cfg.MuSet = "1,2"

	g, err := pipeline.New(cfg, pipeline.WithObserver(rec))
	require.NoError(t, err)
	stats, err := g.Run(context.Background(), discard{})
	require.NoError(t, err)

	assert.Equal(t, 12.0, testutil.ToFloat64(rec.Samples))
	var m dto.Metric
	require.NoError(t, rec.Substeps.(prometheus.Metric).Write(&m))
	assert.Equal(t, uint64(12), m.GetHistogram().GetSampleCount())
	assert.Equal(t, float64(stats.Substeps), m.GetHistogram().GetSampleSum())

	var trajectories float64
	for _, v := range []string{"gaussians", "rectangles", "smooth_noise", "gradient_mix"} {
		trajectories += testutil.ToFloat64(rec.Trajectories.WithLabelValues(v))
	}
	assert.Equal(t, 3.0, trajectories)
	assert.Equal(t, uint64(12), stats.Samples)

	n, err := testutil.GatherAndCount(reg, "diffgen_tau")
	require.NoError(t, err)
	assert.LessOrEqual(t, n, 2)
	assert.GreaterOrEqual(t, n, 1)
}

func TestRecorder_NilSafe(t *testing.T) {
	var rec *Recorder
	assert.NotPanics(t, func() {
		rec.OnTrajectory(&pipeline.Trajectory{})
		rec.OnSample(&pipeline.Sample{})
	})
}

func TestFormatMu(t *testing.T) {
	assert.Equal(t, "2", formatMu(2))
	assert.Equal(t, "0.5", formatMu(0.5))
	assert.Equal(t, "20", formatMu(20))
}
