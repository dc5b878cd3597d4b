package metrics

import "time"

// ResultLabel enumerates per-script result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultFailed  ResultLabel = "failed"
)

// OutcomeLabel enumerates final job states.
type OutcomeLabel string

const (
	OutcomeCompleted OutcomeLabel = "completed"
	OutcomeSkipped   OutcomeLabel = "skipped"
	OutcomeFailed    OutcomeLabel = "failed"
)

// Recorder defines observability hooks for jobs and the scripts they run.
// Implementations may forward to Prometheus or elsewhere.
type Recorder interface {
	ObserveJobDuration(d time.Duration)
	ObserveScriptDuration(script string, d time.Duration)
	IncScriptResult(script string, result ResultLabel)
	IncJobOutcome(outcome OutcomeLabel)
	AddPausesInserted(script, dialect string, n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveJobDuration(time.Duration)            {}
func (NoopRecorder) ObserveScriptDuration(string, time.Duration) {}
func (NoopRecorder) IncScriptResult(string, ResultLabel)         {}
func (NoopRecorder) IncJobOutcome(OutcomeLabel)                  {}
func (NoopRecorder) AddPausesInserted(string, string, int)       {}
