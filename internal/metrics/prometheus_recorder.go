package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "gcodepost"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	jobDuration    prom.Histogram
	scriptDuration *prom.HistogramVec
	scriptResults  *prom.CounterVec
	jobOutcomes    *prom.CounterVec
	pauses         *prom.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// Script runs are fast; the default buckets start too high to tell them apart.
var durationBuckets = prom.ExponentialBuckets(0.0005, 4, 10)

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		jobDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Total duration of post-processing jobs",
			Buckets:   durationBuckets,
		}),
		scriptDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "script_duration_seconds",
			Help:      "Duration of individual script runs",
			Buckets:   durationBuckets,
		}, []string{"script"}),
		scriptResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "script_results_total",
			Help:      "Script run counts by result",
		}, []string{"script", "result"}),
		jobOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "job_outcomes_total",
			Help:      "Job counts by final outcome",
		}, []string{"outcome"}),
		pauses: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pauses_inserted_total",
			Help:      "Pause blocks inserted by script and controller dialect",
		}, []string{"script", "dialect"}),
	}
	reg.MustRegister(pr.jobDuration, pr.scriptDuration, pr.scriptResults, pr.jobOutcomes, pr.pauses)
	return pr
}

func (p *PrometheusRecorder) ObserveJobDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.jobDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveScriptDuration(script string, d time.Duration) {
	if p == nil {
		return
	}
	p.scriptDuration.WithLabelValues(script).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncScriptResult(script string, result ResultLabel) {
	if p == nil {
		return
	}
	p.scriptResults.WithLabelValues(script, string(result)).Inc()
}

func (p *PrometheusRecorder) IncJobOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.jobOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddPausesInserted(script, dialect string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.pauses.WithLabelValues(script, dialect).Add(float64(n))
}
