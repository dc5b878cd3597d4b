package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/gcodepost/internal/logfields"
	"git.home.luguber.info/inful/gcodepost/internal/retry"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "gcodepost.jobs"

// DefaultStream is the JetStream stream created to capture the subject.
const DefaultStream = "GCODEPOST"

const publishTimeout = 5 * time.Second

// publisher is the part of jetstream.JetStream the notifier needs.
type publisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSNotifier publishes JobEvent JSON to a JetStream subject.
type NATSNotifier struct {
	conn    *nats.Conn
	js      publisher
	subject string
	retry   retry.Policy
	logger  *slog.Logger
}

var _ Notifier = (*NATSNotifier)(nil)

// NATSConfig configures NewNATSNotifier.
type NATSConfig struct {
	URL     string
	Subject string
	Stream  string
	Retry   retry.Policy // Zero value means no retries
}

// NewNATSNotifier connects to NATS and makes sure a stream captures the
// subject.
func NewNATSNotifier(ctx context.Context, cfg NATSConfig, logger *slog.Logger) (*NATSNotifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("gcodepost"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(setupCtx, jetstream.StreamConfig{
		Name:        cfg.Stream,
		Description: "gcodepost job outcomes",
		Subjects:    []string{cfg.Subject},
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Stream, err)
	}

	logger.Info("NATS notifier initialized",
		slog.String("url", cfg.URL),
		slog.String("subject", cfg.Subject),
		slog.String("stream", cfg.Stream))

	return newNATSNotifier(conn, js, cfg.Subject, cfg.Retry, logger), nil
}

func newNATSNotifier(conn *nats.Conn, js publisher, subject string, policy retry.Policy, logger *slog.Logger) *NATSNotifier {
	return &NATSNotifier{conn: conn, js: js, subject: subject, retry: policy, logger: logger}
}

// Notify publishes event and waits for the stream acknowledgement, retrying
// failed publishes according to the configured policy.
func (n *NATSNotifier) Notify(ctx context.Context, event JobEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// The job ID doubles as the message ID so retried publishes deduplicate.
	msgID := event.JobID + "/" + event.Outcome
	attempt := 0
	err = n.retry.Do(ctx, func(ctx context.Context) error {
		attempt++
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		_, err := n.js.Publish(pubCtx, n.subject, data, jetstream.WithMsgID(msgID))
		if err != nil && attempt <= n.retry.MaxRetries {
			n.logger.Debug("Publish failed, retrying", logfields.JobID(event.JobID), slog.Int("attempt", attempt), logfields.Error(err))
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	n.logger.Debug("Published job event",
		logfields.JobID(event.JobID),
		logfields.JobOutcome(event.Outcome),
		slog.String("subject", n.subject))

	return nil
}

// Close drains and closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.conn != nil {
		return n.conn.Drain()
	}
	return nil
}
