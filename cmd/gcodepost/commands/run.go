package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/gcodepost/internal/config"
	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
	"git.home.luguber.info/inful/gcodepost/internal/metrics"
	"git.home.luguber.info/inful/gcodepost/internal/postprocess"
	"git.home.luguber.info/inful/gcodepost/internal/settings"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	File        string   `arg:"" type:"existingfile" help:"G-code file to process"`
	Output      string   `short:"o" help:"Output file (default: input name plus the configured suffix)"`
	Script      string   `help:"Script the --set values apply to" default:"PauseAtTopAndBottom"`
	Set         []string `short:"s" help:"Override a script setting as key=value (repeatable)"`
	Force       bool     `short:"f" help:"Process documents that were already post-processed"`
	MetricsFile string   `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path"`
}

func (r *RunCmd) Run(global *Global, _ *CLI) error {
	cfg, err := global.Config()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scripts, err := r.scripts(cfg)
	if err != nil {
		return err
	}

	svc, err := openServices(ctx, cfg, global.Logger, r.MetricsFile != "")
	if err != nil {
		return err
	}
	defer svc.Close()

	proc, err := svc.processor(cfg, scripts, r.Force)
	if err != nil {
		return err
	}

	out := r.Output
	if out == "" && cfg.Output.Overwrite {
		out = r.File
	}

	job, jobErr := proc.ProcessFile(ctx, r.File, out)

	if r.MetricsFile != "" {
		if err := metrics.WriteTextfile(r.MetricsFile, svc.registry); err != nil {
			return perrors.FileError("write", r.MetricsFile, err)
		}
	}
	if jobErr != nil {
		return jobErr
	}

	printJob(global, job)
	return nil
}

// scripts returns the configured chain with --set values applied.
func (r *RunCmd) scripts(cfg *config.Config) ([]config.ScriptConfig, error) {
	scripts := cfg.Scripts
	if len(r.Set) > 0 || len(scripts) == 0 {
		values, err := settings.ParseAssignments(r.Set)
		if err != nil {
			return nil, err
		}
		scripts = postprocess.ApplyOverrides(scripts, r.Script, values)
	}
	return scripts, nil
}

func printJob(global *Global, job *postprocess.Job) {
	switch job.Outcome {
	case metrics.OutcomeSkipped:
		fmt.Fprintf(global.Out, "%s: skipped (%s)\n", job.Source, job.SkipReason)
	default:
		fmt.Fprintf(global.Out, "%s -> %s: %d pause(s) inserted\n", job.Source, job.Output, job.Pauses)
	}
}
