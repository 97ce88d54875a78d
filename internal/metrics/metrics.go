package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vidbatch/internal/report"
)

// Recorder owns the vidbatch collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	itemsTotal      *prometheus.CounterVec
	itemDuration    *prometheus.HistogramVec
	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	framesExtracted prometheus.Counter
	activeRuns      prometheus.Gauge
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		itemsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vidbatch_items_total",
			Help: "Videos processed, by operation, status and error kind",
		}, []string{"operation", "status", "error_kind"}),
		itemDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vidbatch_item_duration_seconds",
			Help:    "Time spent on a single video",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}, []string{"operation"}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vidbatch_runs_total",
			Help: "Pipeline runs, by status",
		}, []string{"status"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vidbatch_run_duration_seconds",
			Help:    "Duration of a full pipeline run",
			Buckets: []float64{1, 10, 60, 300, 900, 3600, 7200},
		}, []string{"status"}),
		framesExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "vidbatch_frames_extracted_total",
			Help: "Still frames written across all runs",
		}),
		activeRuns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vidbatch_active_runs",
			Help: "Pipeline runs currently executing",
		}),
	}
}

// ObserveReport records every item of a finished batch.
func (r *Recorder) ObserveReport(rep report.Report) {
	if r == nil {
		return
	}
	op := string(rep.Operation)
	for _, item := range rep.Items {
		r.itemsTotal.WithLabelValues(op, string(item.Status), item.ErrorKind).Inc()
		if item.Status != report.StatusSkipped {
			r.itemDuration.WithLabelValues(op).Observe(item.Duration.Seconds())
		}
		if rep.Operation == report.OperationGrab {
			r.framesExtracted.Add(float64(item.Frames))
		}
	}
}

// RunStarted marks a run as active and returns the function that finishes it.
func (r *Recorder) RunStarted() func(status string) {
	if r == nil {
		return func(string) {}
	}
	started := time.Now()
	r.activeRuns.Inc()
	return func(status string) {
		r.activeRuns.Dec()
		r.runsTotal.WithLabelValues(status).Inc()
		r.runDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	}
}

// Registry exposes the underlying registry for tests and embedding.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
