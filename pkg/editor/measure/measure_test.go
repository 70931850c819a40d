package measure_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-editor/pkg/editor/measure"
)

func TestPrometheusRecorder(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := measure.NewPrometheusRecorder(reg)

	rec.GraphMutation("add_step")
	rec.GraphMutation("add_step")
	rec.InvariantRejected("cycle")
	rec.SessionStart("started")
	rec.LogChunk("output")
	rec.LayoutComputed(time.Millisecond, 3)

	count, err := testutil.GatherAndCount(reg,
		"pipeline_editor_graph_mutations_total",
		"pipeline_editor_graph_rejections_total",
		"pipeline_editor_session_starts_total",
		"pipeline_editor_log_chunks_total",
		"pipeline_editor_layout_duration_seconds",
		"pipeline_editor_layout_steps",
	)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestNoop(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		measure.Noop.GraphMutation("x")
		measure.Noop.LayoutComputed(time.Second, 1)
	})
}
