package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/gcodepost/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Inbox  string `help:"Inbox directory (overrides watch.inbox)"`
	Outbox string `help:"Outbox directory (overrides watch.outbox)"`
	Force  bool   `short:"f" help:"Process documents that were already post-processed"`
}

func (w *WatchCmd) Run(global *Global, _ *CLI) error {
	cfg, err := global.Config()
	if err != nil {
		return err
	}
	if w.Inbox != "" {
		cfg.Watch.Inbox = w.Inbox
	}
	if w.Outbox != "" {
		cfg.Watch.Outbox = w.Outbox
	}
	if err := cfg.ValidateWatch(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := openServices(ctx, cfg, global.Logger, cfg.Watch.MetricsAddr != "")
	if err != nil {
		return err
	}
	defer svc.Close()

	proc, err := svc.processor(cfg, cfg.Scripts, w.Force)
	if err != nil {
		return err
	}

	watcher, err := watch.New(proc, watch.Options{
		Inbox:         cfg.Watch.Inbox,
		Outbox:        cfg.Watch.Outbox,
		Debounce:      cfg.Watch.Debounce.Std(),
		SweepInterval: cfg.Watch.SweepInterval.Std(),
	}, global.Logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	running := 1
	go func() { errCh <- watcher.Run(ctx) }()

	if cfg.Watch.MetricsAddr != "" {
		server := watch.NewServer(cfg.Watch.MetricsAddr, watcher, svc.registry, svc.projection(), global.Logger)
		running++
		go func() { errCh <- server.Run(ctx) }()
	}

	slog.Info("Daemon started, waiting for shutdown signal...")

	var firstErr error
	for ; running > 0; running-- {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	if firstErr != nil {
		return fmt.Errorf("daemon error: %w", firstErr)
	}

	processed, failed := watcher.Counts()
	slog.Info("Daemon stopped", slog.Int64("processed", processed), slog.Int64("failed", failed))
	return nil
}
