package pauseattopbottom

import "git.home.luguber.info/inful/gcodepost/internal/gcode"

// Feed rate of every parking move, in mm/min.
const parkFeedRate = 4500

// Heads below this height are lifted to it while parked.
const safeParkZ = 70

// Header lines opening every inserted pause block.
var pauseHeader = []string{
	gcode.TypePrefix + gcode.TypeCustom,
	";added code by post processing",
	";script: " + ScriptName,
}

// pauseCommand is the operator wait, annotated as the pause itself.
var pauseCommand = gcode.PutValue(gcode.Fields{'M': 0}) + ";Do the actual pause"

// Park is where the head waits and whether filament is retracted first.
type Park struct {
	X, Y    float64
	Retract bool
}

// Synthesize builds the pause block for a toolhead state. Legacy controllers
// get retract, lift, park and the symmetric resume moves around the wait;
// Griffin controllers only get the wait.
func Synthesize(dialect Dialect, park Park, state gcode.Toolhead) []string {
	lines := make([]string, 0, len(pauseHeader)+11)
	lines = append(lines, pauseHeader...)

	if dialect == DialectLegacy {
		if park.Retract {
			lines = append(lines, gcode.PutValue(gcode.Fields{'G': 10}))
		}
		lines = append(lines,
			gcode.PutValue(gcode.Fields{'G': 1, 'Z': state.Z + 1, 'F': parkFeedRate}),
			gcode.PutValue(gcode.Fields{'G': 1, 'X': park.X, 'Y': park.Y, 'F': parkFeedRate}),
		)
		if state.Z < safeParkZ {
			lines = append(lines, gcode.PutValue(gcode.Fields{'G': 1, 'Z': safeParkZ, 'F': parkFeedRate}))
		}
	}

	lines = append(lines, pauseCommand)

	if dialect == DialectLegacy {
		lines = append(lines,
			gcode.PutValue(gcode.Fields{'G': 1, 'Z': state.Z + 1, 'F': parkFeedRate}),
			gcode.PutValue(gcode.Fields{'G': 1, 'X': state.X, 'Y': state.Y, 'F': parkFeedRate}),
		)
		if park.Retract {
			lines = append(lines, gcode.PutValue(gcode.Fields{'G': 11}))
		}
		lines = append(lines,
			gcode.PutValue(gcode.Fields{'G': 1, 'Z': state.Z, 'F': parkFeedRate}),
			gcode.PutValue(gcode.Fields{'G': 92, 'E': state.E}),
		)
	}

	return lines
}
