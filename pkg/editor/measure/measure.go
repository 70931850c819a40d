// Package measure records editor metrics.
package measure

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder exposes the editor metrics to Prometheus.
type PrometheusRecorder struct {
	mutations     *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	layoutTime    prometheus.Histogram
	layoutSteps   prometheus.Gauge
	sessionStarts *prometheus.CounterVec
	logChunks     *prometheus.CounterVec
}

// NewPrometheusRecorder registers the editor metrics on reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_editor_graph_mutations_total",
			Help: "Number of graph mutations applied, by operation.",
		}, []string{"op"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_editor_graph_rejections_total",
			Help: "Number of graph mutations rejected by an invariant, by kind.",
		}, []string{"kind"}),
		layoutTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_editor_layout_duration_seconds",
			Help:    "Time spent computing an automatic layout.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		layoutSteps: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pipeline_editor_layout_steps",
			Help: "Number of steps placed by the last automatic layout.",
		}),
		sessionStarts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_editor_session_starts_total",
			Help: "Number of session start attempts, by outcome.",
		}, []string{"outcome"}),
		logChunks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_editor_log_chunks_total",
			Help: "Number of log chunks written to a terminal, by action.",
		}, []string{"action"}),
	}
}

func (r *PrometheusRecorder) GraphMutation(op string) {
	r.mutations.WithLabelValues(op).Inc()
}

func (r *PrometheusRecorder) InvariantRejected(kind string) {
	r.rejections.WithLabelValues(kind).Inc()
}

func (r *PrometheusRecorder) LayoutComputed(elapsed time.Duration, steps int) {
	r.layoutTime.Observe(elapsed.Seconds())
	r.layoutSteps.Set(float64(steps))
}

func (r *PrometheusRecorder) SessionStart(outcome string) {
	r.sessionStarts.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRecorder) LogChunk(action string) {
	r.logChunks.WithLabelValues(action).Inc()
}

type noop struct{}

// Noop is a Recorder that drops everything.
var Noop Recorder = noop{}

func (noop) GraphMutation(string)              {}
func (noop) InvariantRejected(string)          {}
func (noop) LayoutComputed(time.Duration, int) {}
func (noop) SessionStart(string)               {}
func (noop) LogChunk(string)                   {}

var _ Recorder = (*PrometheusRecorder)(nil)
