package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/san-kum/numeth/internal/dynamo"
)

// Recorder aggregates finished runs into Prometheus collectors held on a
// private registry, so several recorders never collide.
type Recorder struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	records    *prometheus.CounterVec
	iterations *prometheus.HistogramVec
	duration   *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "numeth_runs_total",
			Help: "Finished runs by method and terminal status",
		}, []string{"method", "status"}),
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "numeth_records_total",
			Help: "Iteration records emitted",
		}, []string{"method"}),
		iterations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "numeth_run_iterations",
			Help:    "Records per run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"method"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "numeth_run_duration_seconds",
			Help:    "Wall time of a run",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 1},
		}, []string{"method"}),
	}
}

// Observe records one finished run.
func (r *Recorder) Observe(res *dynamo.Result, elapsed time.Duration) {
	if res == nil {
		return
	}
	m := string(res.Method)
	r.runs.WithLabelValues(m, res.Status.String()).Inc()
	r.records.WithLabelValues(m).Add(float64(len(res.Records)))
	r.iterations.WithLabelValues(m).Observe(float64(len(res.Records)))
	r.duration.WithLabelValues(m).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, e.g. for testutil or a handler.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}
