package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveSegment("fast", "succeeded", 1.5)
	r.ObserveSegment("fast", "warned", 0.2)
	r.ObserveSegment("fast", "succeeded", 2)
	r.ObserveSegment("precise", "failed", 30)
	r.ObserveRun("completed", "")
	r.ObserveRun("aborted", "segment_failure")
	r.ObserveEscalation()
	r.ObserveResolutionFallback()
	r.ObserveLowDiskSpace()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.SegmentsTotal.WithLabelValues("fast", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SegmentsTotal.WithLabelValues("fast", "warned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SegmentsTotal.WithLabelValues("precise", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("aborted", "segment_failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ModeEscalations))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ResolutionFallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.LowDiskSpaceWarnings))

	assert.Equal(t, 2, testutil.CollectAndCount(r.SegmentDuration))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRun("completed", "")
		r.ObserveSegment("fast", "succeeded", 1)
		r.ObserveEscalation()
		r.ObserveResolutionFallback()
		r.ObserveLowDiskSpace()
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.ObserveRun("completed", "")

	path := filepath.Join(t.TempDir(), "segmenter.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# TYPE video_segmenter_runs_total counter")
	assert.Contains(t, string(data), `status="completed"`)
}
