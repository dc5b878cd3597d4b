package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/gcodepost/internal/plugin"
)

// ScriptsCmd implements the 'scripts' command.
type ScriptsCmd struct{}

func (s *ScriptsCmd) Run(global *Global, _ *CLI) error {
	tw := tabwriter.NewWriter(global.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tTYPE\tCAPABILITIES\tDESCRIPTION")
	for _, p := range plugin.List() {
		m := p.Metadata()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.Name, m.Version, m.Type, strings.Join(m.Capabilities, ","), m.Description)
	}
	return tw.Flush()
}
