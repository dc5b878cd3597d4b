package commands

import (
	"fmt"

	"git.home.luguber.info/inful/gcodepost/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(global *Global, root *CLI) error {
	path := root.Config
	if path == "" {
		path = config.DefaultPath
	}
	if err := config.Init(path, i.Force); err != nil {
		return err
	}
	fmt.Fprintf(global.Out, "Wrote example configuration to %s\n", path)
	return nil
}
