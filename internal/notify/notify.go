// Package notify publishes job outcome events to downstream consumers.
package notify

import (
	"context"
	"time"
)

// JobEvent is the message published when a job finishes.
type JobEvent struct {
	JobID      string    `json:"job_id"`
	Outcome    string    `json:"outcome"`
	Source     string    `json:"source,omitempty"`
	Output     string    `json:"output,omitempty"`
	Scripts    []string  `json:"scripts,omitempty"`
	Pauses     int       `json:"pauses"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notifier delivers job events.
type Notifier interface {
	Notify(ctx context.Context, event JobEvent) error
	Close() error
}

// NoopNotifier drops every event (default when notifications are not configured).
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, JobEvent) error { return nil }
func (NoopNotifier) Close() error                           { return nil }
