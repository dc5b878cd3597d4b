package commands

import (
	"context"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/gcodepost/internal/config"
	"git.home.luguber.info/inful/gcodepost/internal/eventstore"
	"git.home.luguber.info/inful/gcodepost/internal/logfields"
	"git.home.luguber.info/inful/gcodepost/internal/metrics"
	"git.home.luguber.info/inful/gcodepost/internal/notify"
	"git.home.luguber.info/inful/gcodepost/internal/plugin"
	"git.home.luguber.info/inful/gcodepost/internal/postprocess"
)

// services are the optional collaborators of a Processor, opened from the
// configuration.
type services struct {
	registry *prom.Registry
	recorder metrics.Recorder
	store    *eventstore.SQLiteStore
	notifier notify.Notifier
	logger   *slog.Logger
}

// openServices opens history and notifications as configured. Metrics are
// collected only when withMetrics is set.
func openServices(ctx context.Context, cfg *config.Config, logger *slog.Logger, withMetrics bool) (*services, error) {
	s := &services{
		recorder: metrics.NoopRecorder{},
		notifier: notify.NoopNotifier{},
		logger:   logger,
	}

	if withMetrics {
		s.registry = prom.NewRegistry()
		s.recorder = metrics.NewPrometheusRecorder(s.registry)
	}

	if cfg.History.Path != "" {
		store, err := eventstore.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	if cfg.Notify.NATSURL != "" {
		n, err := notify.NewNATSNotifier(ctx, notify.NATSConfig{
			URL:     cfg.Notify.NATSURL,
			Subject: cfg.Notify.Subject,
			Stream:  cfg.Notify.Stream,
			Retry:   cfg.Notify.Retry.Policy(),
		}, logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.notifier = n
	}

	return s, nil
}

// processor builds a Processor for scripts with the output options of cfg.
func (s *services) processor(cfg *config.Config, scripts []config.ScriptConfig, force bool) (*postprocess.Processor, error) {
	pipeline, err := postprocess.BuildPipeline(plugin.DefaultRegistry(), scripts)
	if err != nil {
		return nil, err
	}

	opts := []postprocess.Option{
		postprocess.WithLogger(s.logger),
		postprocess.WithRecorder(s.recorder),
		postprocess.WithNotifier(s.notifier),
		postprocess.WithMark(cfg.Output.Mark),
		postprocess.WithForce(force),
		postprocess.WithSuffix(cfg.Output.Suffix),
	}
	if s.store != nil {
		opts = append(opts, postprocess.WithStore(s.store))
	}
	return postprocess.NewProcessor(pipeline, opts...), nil
}

// projection returns a job history view, or nil when history is disabled.
func (s *services) projection() *eventstore.JobHistoryProjection {
	if s.store == nil {
		return nil
	}
	return eventstore.NewJobHistoryProjection(s.store, 100)
}

// Close releases the opened services.
func (s *services) Close() {
	if err := s.notifier.Close(); err != nil {
		s.logger.Warn("Failed to close notifier", logfields.Error(err))
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("Failed to close history", logfields.Error(err))
		}
	}
}
