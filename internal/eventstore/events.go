package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event type names.
const (
	TypeJobStarted    = "job_started"
	TypeScriptApplied = "script_applied"
	TypeJobCompleted  = "job_completed"
	TypeJobFailed     = "job_failed"
	TypeJobSkipped    = "job_skipped"
)

// JobStarted is recorded when a job begins.
type JobStarted struct {
	Source  string   `json:"source"`
	Output  string   `json:"output,omitempty"`
	Scripts []string `json:"scripts"`
	Layers  int      `json:"layers"`
}

// ScriptApplied is recorded after each script in the chain.
type ScriptApplied struct {
	Script     string `json:"script"`
	Skipped    bool   `json:"skipped"`
	DurationMS int64  `json:"duration_ms"`
	Pauses     int    `json:"pauses,omitempty"`
	Dialect    string `json:"dialect,omitempty"`
}

// JobCompleted is recorded when a job wrote its output.
type JobCompleted struct {
	Output     string `json:"output,omitempty"`
	Pauses     int    `json:"pauses"`
	DurationMS int64  `json:"duration_ms"`
}

// JobFailed is recorded when a job stops with an error.
type JobFailed struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// JobSkipped is recorded when a document is left alone.
type JobSkipped struct {
	Reason string `json:"reason"`
}

// Payload is implemented by the event payload structs of this package; it
// ties each to its type name.
type Payload interface {
	eventType() string
}

func (JobStarted) eventType() string    { return TypeJobStarted }
func (ScriptApplied) eventType() string { return TypeScriptApplied }
func (JobCompleted) eventType() string  { return TypeJobCompleted }
func (JobFailed) eventType() string     { return TypeJobFailed }
func (JobSkipped) eventType() string    { return TypeJobSkipped }

// Record marshals payload and appends it to store under its event type.
func Record(ctx context.Context, store Store, jobID string, payload Payload, metadata map[string]string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMarshalPayloadFailed, payload.eventType(), err)
	}
	return store.Append(ctx, jobID, payload.eventType(), data, metadata)
}

// Decode unmarshals the payload of a stored event into the matching struct.
// Unknown event types decode to a generic map.
func Decode(e Event) (any, error) {
	var target any
	switch e.Type() {
	case TypeJobStarted:
		target = &JobStarted{}
	case TypeScriptApplied:
		target = &ScriptApplied{}
	case TypeJobCompleted:
		target = &JobCompleted{}
	case TypeJobFailed:
		target = &JobFailed{}
	case TypeJobSkipped:
		target = &JobSkipped{}
	default:
		target = &map[string]any{}
	}
	if err := json.Unmarshal(e.Payload(), target); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.Type(), err)
	}
	return target, nil
}
