package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
	"git.home.luguber.info/inful/gcodepost/internal/eventstore"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit   int    `short:"n" help:"Number of most recent events to show (-1 for all)" default:"20"`
	Job     string `help:"Show the events of one job"`
	Summary bool   `help:"Show one line per job instead of raw events"`
}

func (h *HistoryCmd) Run(global *Global, _ *CLI) error {
	cfg, err := global.Config()
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return perrors.ValidationFailed("history.path", "job history is not enabled in the configuration")
	}

	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if h.Summary {
		return h.printSummary(ctx, global, store)
	}

	var events []eventstore.Event
	if h.Job != "" {
		events, err = store.GetByJobID(ctx, h.Job)
	} else {
		events, err = store.Recent(ctx, h.Limit)
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(global.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tJOB\tEVENT\tPAYLOAD")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp().Local().Format(time.DateTime), e.JobID(), e.Type(), e.Payload())
	}
	return tw.Flush()
}

func (h *HistoryCmd) printSummary(ctx context.Context, global *Global, store eventstore.Store) error {
	size := h.Limit
	if size < 0 {
		size = 1 << 16
	}
	projection := eventstore.NewJobHistoryProjection(store, size)
	if err := projection.Rebuild(ctx); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(global.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tJOB\tSTATUS\tPAUSES\tSOURCE\tDETAIL")
	for _, j := range projection.GetHistory() {
		if h.Job != "" && j.JobID != h.Job {
			continue
		}
		detail := j.Output
		switch j.Status {
		case eventstore.StatusFailed:
			detail = j.ErrorStage + ": " + j.ErrorMessage
		case eventstore.StatusSkipped:
			detail = j.SkipReason
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			j.StartedAt.Local().Format(time.DateTime), j.JobID, j.Status, j.Pauses, j.Source, detail)
	}
	return tw.Flush()
}
