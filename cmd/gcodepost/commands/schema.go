package commands

import (
	"fmt"

	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
	"git.home.luguber.info/inful/gcodepost/internal/plugin"
)

// SchemaCmd implements the 'schema' command.
type SchemaCmd struct {
	Script string `help:"Script name" default:"PauseAtTopAndBottom"`
}

func (s *SchemaCmd) Run(global *Global, _ *CLI) error {
	p, err := plugin.GetLatest(s.Script)
	if err != nil {
		return perrors.ScriptNotFound(s.Script)
	}

	data, err := p.Schema().JSON()
	if err != nil {
		return perrors.InternalError("failed to render schema", err)
	}
	_, err = fmt.Fprintln(global.Out, string(data))
	return err
}
