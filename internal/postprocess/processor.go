// Package postprocess runs the configured script chain over G-code documents
// as jobs, recording metrics, history and notifications for each.
package postprocess

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/gcodepost/internal/eventstore"
	"git.home.luguber.info/inful/gcodepost/internal/gcodefile"
	"git.home.luguber.info/inful/gcodepost/internal/logfields"
	"git.home.luguber.info/inful/gcodepost/internal/metrics"
	"git.home.luguber.info/inful/gcodepost/internal/notify"
	"git.home.luguber.info/inful/gcodepost/internal/plugin"
	"git.home.luguber.info/inful/gcodepost/internal/plugin/transforms"
)

// Job stages named in failures.
const (
	StageRead    = "read"
	StageExecute = "execute"
	StageWrite   = "write"
)

// SkipReasonMarked is the skip reason for documents that carry the mark line.
const SkipReasonMarked = "already post-processed"

// Job describes one processed document.
type Job struct {
	ID         string
	Source     string
	Output     string
	Outcome    metrics.OutcomeLabel
	SkipReason string
	Steps      []transforms.StepResult
	Pauses     int
	Layers     []string
	Duration   time.Duration

	started time.Time
}

// Processor runs a pipeline over documents.
type Processor struct {
	pipeline *transforms.Pipeline
	recorder metrics.Recorder
	store    eventstore.Store
	notifier notify.Notifier
	logger   *slog.Logger
	mark     bool
	force    bool
	suffix   string
	now      func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Processor) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithStore enables job history.
func WithStore(s eventstore.Store) Option {
	return func(p *Processor) {
		p.store = s
	}
}

// WithNotifier sets where job outcomes are published.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Processor) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMark controls whether output gets the mark line.
func WithMark(mark bool) Option {
	return func(p *Processor) {
		p.mark = mark
	}
}

// WithForce processes documents even when they are already marked.
func WithForce(force bool) Option {
	return func(p *Processor) {
		p.force = force
	}
}

// WithSuffix sets the suffix used to derive output paths.
func WithSuffix(suffix string) Option {
	return func(p *Processor) {
		p.suffix = suffix
	}
}

// NewProcessor creates a processor for pipeline.
func NewProcessor(pipeline *transforms.Pipeline, options ...Option) *Processor {
	p := &Processor{
		pipeline: pipeline,
		recorder: metrics.NoopRecorder{},
		notifier: notify.NoopNotifier{},
		logger:   slog.Default(),
		mark:     true,
		suffix:   gcodefile.DefaultSuffix,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// OutputPath returns where ProcessFile writes in when no output is given.
func (p *Processor) OutputPath(in string) string {
	return gcodefile.OutputPath(in, p.suffix)
}

// ProcessLayers runs the chain over layers read from source. The layers
// must use '\n' line endings, as gcodefile.Parse produces. The processed
// layers are in the returned job. A marked document is skipped unless the
// processor is forced.
func (p *Processor) ProcessLayers(ctx context.Context, layers []string, source string) (*Job, error) {
	job := p.begin(source, "")
	if p.skip(ctx, job, layers) {
		return job, nil
	}
	if err := p.transform(ctx, job, layers); err != nil {
		return job, p.fail(ctx, job, StageExecute, err)
	}
	p.complete(ctx, job)
	return job, nil
}

// ProcessFile reads in, runs the chain and writes the result to out. An
// empty out derives the path from in and the configured suffix.
func (p *Processor) ProcessFile(ctx context.Context, in, out string) (*Job, error) {
	if out == "" {
		out = p.OutputPath(in)
	}
	job := p.begin(in, out)

	doc, err := gcodefile.Read(in)
	if err != nil {
		return job, p.fail(ctx, job, StageRead, err)
	}
	if p.skip(ctx, job, doc.Layers) {
		return job, nil
	}
	if err := p.transform(ctx, job, doc.Layers); err != nil {
		return job, p.fail(ctx, job, StageExecute, err)
	}

	doc.Layers = job.Layers
	if err := gcodefile.Write(out, doc); err != nil {
		return job, p.fail(ctx, job, StageWrite, err)
	}
	p.complete(ctx, job)
	return job, nil
}

func (p *Processor) begin(source, output string) *Job {
	return &Job{
		ID:      uuid.NewString(),
		Source:  source,
		Output:  output,
		started: p.now(),
	}
}

func (p *Processor) jobLogger(job *Job) *slog.Logger {
	return p.logger.With(logfields.JobID(job.ID), logfields.File(job.Source))
}

// skip finishes job as skipped when layers are already marked.
func (p *Processor) skip(ctx context.Context, job *Job, layers []string) bool {
	doc := gcodefile.Document{Layers: layers}
	if p.force || !doc.IsMarked() {
		return false
	}

	job.Layers = layers
	job.Outcome = metrics.OutcomeSkipped
	job.SkipReason = SkipReasonMarked
	job.Duration = p.now().Sub(job.started)

	p.jobLogger(job).Info("Document skipped", "reason", job.SkipReason)
	p.recorder.IncJobOutcome(metrics.OutcomeSkipped)
	p.record(ctx, job, eventstore.JobSkipped{Reason: job.SkipReason})
	p.publish(ctx, job, "")
	return true
}

// transform runs the pipeline over layers and leaves the result in job.
func (p *Processor) transform(ctx context.Context, job *Job, layers []string) error {
	logger := p.jobLogger(job)
	names := p.pipeline.Names()

	p.record(ctx, job, eventstore.JobStarted{
		Source:  job.Source,
		Output:  job.Output,
		Scripts: names,
		Layers:  len(layers),
	})
	logger.Info("Job started", logfields.Layers(len(layers)), "scripts", names)

	pctx := plugin.NewPluginContext(ctx, logger, job.ID, job.Source, layers)
	results, err := p.pipeline.Run(pctx)
	job.Steps = results

	applied := make([]string, 0, len(results))
	for _, r := range results {
		applied = p.observeStep(ctx, job, r, applied)
	}

	if err != nil {
		var pluginErr *plugin.PluginError
		if errors.As(err, &pluginErr) {
			p.recorder.IncScriptResult(pluginErr.PluginName, metrics.ResultFailed)
		}
		return err
	}

	if p.mark {
		doc := gcodefile.Document{Layers: pctx.Layers}
		doc.Mark(applied...)
		pctx.Layers = doc.Layers
	}
	job.Layers = pctx.Layers
	return nil
}

// observeStep records one step result and returns applied extended with the
// step name when it ran.
func (p *Processor) observeStep(ctx context.Context, job *Job, r transforms.StepResult, applied []string) []string {
	event := eventstore.ScriptApplied{
		Script:     r.Name,
		Skipped:    r.Skipped,
		DurationMS: r.Duration.Milliseconds(),
	}

	if r.Skipped {
		p.recorder.IncScriptResult(r.Name, metrics.ResultSkipped)
	} else {
		p.recorder.IncScriptResult(r.Name, metrics.ResultSuccess)
		p.recorder.ObserveScriptDuration(r.Name, r.Duration)
		applied = append(applied, r.Name)
	}

	if rep, ok := r.Stats.(transforms.PauseReporter); ok {
		event.Pauses = rep.PausesInserted()
		event.Dialect = rep.DialectName()
		job.Pauses += event.Pauses
		p.recorder.AddPausesInserted(r.Name, event.Dialect, event.Pauses)
	}

	p.record(ctx, job, event)
	return applied
}

func (p *Processor) complete(ctx context.Context, job *Job) {
	job.Outcome = metrics.OutcomeCompleted
	job.Duration = p.now().Sub(job.started)

	p.recorder.ObserveJobDuration(job.Duration)
	p.recorder.IncJobOutcome(metrics.OutcomeCompleted)
	p.record(ctx, job, eventstore.JobCompleted{
		Output:     job.Output,
		Pauses:     job.Pauses,
		DurationMS: job.Duration.Milliseconds(),
	})
	p.jobLogger(job).Info("Job completed",
		logfields.Pauses(job.Pauses),
		logfields.Path(job.Output),
		logfields.DurationMS(float64(job.Duration.Microseconds())/1000))
	p.publish(ctx, job, "")
}

// fail finishes job as failed at stage and returns err.
func (p *Processor) fail(ctx context.Context, job *Job, stage string, err error) error {
	job.Outcome = metrics.OutcomeFailed
	job.Duration = p.now().Sub(job.started)

	p.recorder.ObserveJobDuration(job.Duration)
	p.recorder.IncJobOutcome(metrics.OutcomeFailed)
	p.record(ctx, job, eventstore.JobFailed{Stage: stage, Error: err.Error()})
	p.jobLogger(job).Error("Job failed", logfields.Stage(stage), logfields.Error(err))
	p.publish(ctx, job, err.Error())
	return err
}

// record appends a history event. History is best effort; failures are
// logged and the job goes on.
func (p *Processor) record(ctx context.Context, job *Job, payload eventstore.Payload) {
	if p.store == nil {
		return
	}
	if err := eventstore.Record(ctx, p.store, job.ID, payload, nil); err != nil {
		p.jobLogger(job).Warn("Failed to record job event", logfields.Error(err))
	}
}

// publish sends the job outcome. Like history it never fails the job.
func (p *Processor) publish(ctx context.Context, job *Job, errMsg string) {
	event := notify.JobEvent{
		JobID:      job.ID,
		Outcome:    string(job.Outcome),
		Source:     job.Source,
		Output:     job.Output,
		Scripts:    p.pipeline.Names(),
		Pauses:     job.Pauses,
		DurationMS: job.Duration.Milliseconds(),
		Error:      errMsg,
		Timestamp:  p.now().UTC(),
	}
	if job.Outcome != metrics.OutcomeCompleted {
		event.Output = ""
	}
	if err := p.notifier.Notify(ctx, event); err != nil {
		p.jobLogger(job).Warn("Failed to publish job event", logfields.Error(err))
	}
}
