// Package eventstore records the history of post-processing jobs as an
// append-only event log and projects it into per-job summaries.
package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Job status values of a JobSummary.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// JobSummary is a read model summarizing one job.
type JobSummary struct {
	JobID        string        `json:"job_id"`
	Status       string        `json:"status"`
	Source       string        `json:"source,omitempty"`
	Output       string        `json:"output,omitempty"`
	Scripts      []string      `json:"scripts,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Pauses       int           `json:"pauses"`
	ErrorStage   string        `json:"error_stage,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	SkipReason   string        `json:"skip_reason,omitempty"`
}

// JobHistoryProjection maintains an in-memory view of job history,
// reconstructed from events stored in the event store.
type JobHistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	jobs     map[string]*JobSummary // jobID -> summary
	history  []*JobSummary          // finished jobs, newest first
	maxSize  int
	lastSync time.Time
}

// NewJobHistoryProjection creates a new projection backed by the given store.
func NewJobHistoryProjection(store Store, maxHistorySize int) *JobHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &JobHistoryProjection{
		store:   store,
		jobs:    make(map[string]*JobSummary),
		history: make([]*JobSummary, 0, maxHistorySize),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *JobHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.jobs = make(map[string]*JobSummary)
	p.history = make([]*JobSummary, 0, p.maxSize)

	for _, event := range events {
		p.applyEventLocked(event)
	}

	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneJobsLocked()

	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event and updates the projection.
func (p *JobHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

func (p *JobHistoryProjection) applyEventLocked(event Event) {
	jobID := event.JobID()
	if jobID == "" {
		return
	}

	summary, exists := p.jobs[jobID]
	if !exists {
		summary = &JobSummary{
			JobID:     jobID,
			Status:    StatusRunning,
			StartedAt: event.Timestamp(),
		}
		p.jobs[jobID] = summary
	}

	finish := func(status string) {
		now := event.Timestamp()
		summary.CompletedAt = &now
		summary.Duration = now.Sub(summary.StartedAt)
		summary.Status = status
		p.addToHistoryLocked(summary)
	}

	switch event.Type() {
	case TypeJobStarted:
		var payload JobStarted
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Source = payload.Source
			summary.Output = payload.Output
			summary.Scripts = payload.Scripts
		}
		summary.StartedAt = event.Timestamp()

	case TypeScriptApplied:
		var payload ScriptApplied
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.Pauses += payload.Pauses
		}

	case TypeJobCompleted:
		var payload JobCompleted
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			if payload.Output != "" {
				summary.Output = payload.Output
			}
			summary.Pauses = payload.Pauses
		}
		finish(StatusCompleted)

	case TypeJobFailed:
		var payload JobFailed
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.ErrorStage = payload.Stage
			summary.ErrorMessage = payload.Error
		}
		finish(StatusFailed)

	case TypeJobSkipped:
		var payload JobSkipped
		if err := json.Unmarshal(event.Payload(), &payload); err == nil {
			summary.SkipReason = payload.Reason
		}
		finish(StatusSkipped)
	}
}

// addToHistoryLocked adds a finished job to history if not already present.
func (p *JobHistoryProjection) addToHistoryLocked(summary *JobSummary) {
	for _, h := range p.history {
		if h.JobID == summary.JobID {
			return
		}
	}

	p.history = append([]*JobSummary{summary}, p.history...)
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneJobsLocked()
}

// pruneJobsLocked drops finished jobs that fell out of the bounded history.
// Caller must hold p.mu (write lock).
func (p *JobHistoryProjection) pruneJobsLocked() {
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		keep[h.JobID] = struct{}{}
	}

	for id, summary := range p.jobs {
		if summary.Status == StatusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.jobs, id)
		}
	}
}

// GetHistory returns finished jobs, newest first.
func (p *JobHistoryProjection) GetHistory() []*JobSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]*JobSummary, len(p.history))
	copy(result, p.history)
	return result
}

// GetJob returns the summary for a specific job.
func (p *JobHistoryProjection) GetJob(jobID string) (*JobSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, exists := p.jobs[jobID]
	if !exists {
		return nil, false
	}

	cp := *summary
	return &cp, true
}

// Counts returns the number of finished jobs per status.
func (p *JobHistoryProjection) Counts() map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	counts := make(map[string]int, 3)
	for _, h := range p.history {
		counts[h.Status]++
	}
	return counts
}

// LastSyncTime returns when the projection was last rebuilt.
func (p *JobHistoryProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
