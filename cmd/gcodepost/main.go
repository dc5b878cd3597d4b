package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/gcodepost/cmd/gcodepost/commands"
	"git.home.luguber.info/inful/gcodepost/internal/config"
	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
	"git.home.luguber.info/inful/gcodepost/internal/version"

	// Scripts register themselves with the plugin registry.
	_ "git.home.luguber.info/inful/gcodepost/internal/plugin/transforms/pauseattopbottom"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}

	ctx := kong.Parse(cli,
		kong.Name("gcodepost"),
		kong.Description("Post-process sliced G-code: insert print pauses and run other scripts."),
		kong.UsageOnError(),
		kong.Vars{
			"version":        version.String(),
			"config_default": config.DefaultPath,
		},
		kong.Bind(global),
	)

	err := ctx.Run(global, cli)
	perrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
}
