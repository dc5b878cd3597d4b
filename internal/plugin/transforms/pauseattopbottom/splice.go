package pauseattopbottom

import (
	"sort"

	"git.home.luguber.info/inful/gcodepost/internal/gcode"
)

// Insertion pairs a point with the lines to splice in before it.
type Insertion struct {
	Point InsertionPoint
	Lines []string
}

// Splice inserts every block into layers, mutating and returning them.
//
// Insertions are applied in descending (layer, line) order so that growing a
// layer never shifts a point that is still waiting to be applied. Points at
// the same position are applied latest-discovered first, which leaves their
// blocks in discovery order in the output. Points outside the document are
// ignored.
func Splice(layers []string, insertions []Insertion) []string {
	ordered := make([]Insertion, len(insertions))
	for i, ins := range insertions {
		ordered[len(insertions)-1-i] = ins
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Point, ordered[j].Point
		if a.Layer != b.Layer {
			return a.Layer > b.Layer
		}
		return a.Line > b.Line
	})

	for _, ins := range ordered {
		p := ins.Point
		if p.Layer < 0 || p.Layer >= len(layers) {
			continue
		}

		lines := gcode.SplitLines(layers[p.Layer])
		at := p.Line
		if at < 0 {
			at = 0
		}
		if at > len(lines) {
			at = len(lines)
		}

		spliced := make([]string, 0, len(lines)+len(ins.Lines))
		spliced = append(spliced, lines[:at]...)
		spliced = append(spliced, ins.Lines...)
		spliced = append(spliced, lines[at:]...)
		layers[p.Layer] = gcode.JoinLines(spliced)
	}

	return layers
}
