package gcode

import "fmt"

// Toolhead is the last known X/Y/Z/E position seen while scanning. Fields
// are only replaced when a line specifies them.
type Toolhead struct {
	X, Y, Z, E float64
}

// Track folds the coordinate fields of a classified line into the state.
func (t *Toolhead) Track(line Line) {
	c := line.Coords
	if c.HasX {
		t.X = c.X
	}
	if c.HasY {
		t.Y = c.Y
	}
	if c.HasZ {
		t.Z = c.Z
	}
	if c.HasE {
		t.E = c.E
	}
}

// String renders the position for log output.
func (t Toolhead) String() string {
	return fmt.Sprintf("X%s Y%s Z%s E%s",
		FormatNumber(t.X), FormatNumber(t.Y), FormatNumber(t.Z), FormatNumber(t.E))
}
