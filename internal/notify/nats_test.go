package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gcodepost/internal/retry"
)

type fakePublisher struct {
	subject  string
	payload  []byte
	opts     int
	err      error
	failures int // Publishes that fail before one succeeds
	calls    int
}

func (f *fakePublisher) Publish(_ context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls <= f.failures {
		return nil, errors.New("nats: no response from stream")
	}
	f.subject = subject
	f.payload = payload
	f.opts = len(opts)
	return &jetstream.PubAck{Stream: DefaultStream, Sequence: 1}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNATSNotifier_Notify(t *testing.T) {
	pub := &fakePublisher{}
	n := newNATSNotifier(nil, pub, "prints.done", retry.Policy{}, discard())

	err := n.Notify(context.Background(), JobEvent{
		JobID:   "job-1",
		Outcome: "completed",
		Source:  "part.gcode",
		Pauses:  2,
	})
	require.NoError(t, err)

	assert.Equal(t, "prints.done", pub.subject)
	assert.Equal(t, 1, pub.opts)

	var got JobEvent
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, 2, got.Pauses)
	assert.WithinDuration(t, time.Now(), got.Timestamp, time.Minute)

	assert.NoError(t, n.Close())
}

func TestNATSNotifier_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("no responders")}
	policy := retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 2)
	n := newNATSNotifier(nil, pub, DefaultSubject, policy, discard())

	err := n.Notify(context.Background(), JobEvent{JobID: "job-1"})
	assert.ErrorContains(t, err, "no responders")
	assert.Equal(t, 3, pub.calls)
}

func TestNATSNotifier_RetriesTransientFailures(t *testing.T) {
	pub := &fakePublisher{failures: 1}
	policy := retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, 1)
	n := newNATSNotifier(nil, pub, DefaultSubject, policy, discard())

	require.NoError(t, n.Notify(context.Background(), JobEvent{JobID: "job-1", Outcome: "completed"}))
	assert.Equal(t, 2, pub.calls)
	assert.Equal(t, DefaultSubject, pub.subject)
}

func TestNewNATSNotifier_RequiresURL(t *testing.T) {
	_, err := NewNATSNotifier(context.Background(), NATSConfig{}, nil)
	assert.Error(t, err)
}

func TestNoopNotifier(t *testing.T) {
	var n Notifier = NoopNotifier{}
	assert.NoError(t, n.Notify(context.Background(), JobEvent{}))
	assert.NoError(t, n.Close())
}
