// Package commands implements the gcodepost command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/gcodepost/internal/config"
)

// Global carries state shared by all commands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer // Where commands print their results

	cfg    *config.Config
	cfgErr error
}

// Config returns the configuration loaded for this invocation.
func (g *Global) Config() (*config.Config, error) {
	return g.cfg, g.cfgErr
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: ${config_default} when present)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run     RunCmd     `cmd:"" help:"Post-process a G-code file"`
	Schema  SchemaCmd  `cmd:"" help:"Print the settings schema of a script as JSON"`
	Scripts ScriptsCmd `cmd:"" help:"List registered scripts"`
	Watch   WatchCmd   `cmd:"" help:"Process files dropped into the inbox directory until interrupted"`
	History HistoryCmd `cmd:"" help:"Show recorded job history"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; it loads the configuration and sets up
// logging once. A configuration error is kept for the commands that need
// one, so init still works next to a broken file.
func (c *CLI) AfterApply(global *Global) error {
	if global.Out == nil {
		global.Out = os.Stdout
	}

	global.cfg, global.cfgErr = config.LoadOrDefault(c.Config)

	level := slog.LevelInfo
	format := config.LogFormatText
	if global.cfg != nil {
		level = global.cfg.Logging.Level.SlogLevel()
		format = global.cfg.Logging.Format
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	global.Logger = newLogger(os.Stderr, level, format)
	slog.SetDefault(global.Logger)
	return nil
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
