package pauseattopbottom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/gcodepost/internal/gcode"
)

func TestSynthesize(t *testing.T) {
	state := gcode.Toolhead{X: 10, Y: 10, Z: 0.2, E: 1.5}

	tests := []struct {
		name    string
		dialect Dialect
		park    Park
		state   gcode.Toolhead
		want    []string
	}{
		{
			name:    "legacy with retract below safe height",
			dialect: DialectLegacy,
			park:    Park{X: 190, Y: 190, Retract: true},
			state:   state,
			want: []string{
				";TYPE:CUSTOM",
				";added code by post processing",
				";script: PauseAtTopAndBottom",
				"G10",
				"G1 Z1.2 F4500",
				"G1 X190 Y190 F4500",
				"G1 Z70 F4500",
				"M0;Do the actual pause",
				"G1 Z1.2 F4500",
				"G1 X10 Y10 F4500",
				"G11",
				"G1 Z0.2 F4500",
				"G92 E1.5",
			},
		},
		{
			name:    "legacy without retract",
			dialect: DialectLegacy,
			park:    Park{X: 0, Y: -5.5},
			state:   state,
			want: []string{
				";TYPE:CUSTOM",
				";added code by post processing",
				";script: PauseAtTopAndBottom",
				"G1 Z1.2 F4500",
				"G1 X0 Y-5.5 F4500",
				"G1 Z70 F4500",
				"M0;Do the actual pause",
				"G1 Z1.2 F4500",
				"G1 X10 Y10 F4500",
				"G1 Z0.2 F4500",
				"G92 E1.5",
			},
		},
		{
			name:    "legacy above safe height skips the clearance move",
			dialect: DialectLegacy,
			park:    Park{X: 190, Y: 190},
			state:   gcode.Toolhead{X: 1, Y: 2, Z: 70, E: 300},
			want: []string{
				";TYPE:CUSTOM",
				";added code by post processing",
				";script: PauseAtTopAndBottom",
				"G1 Z71 F4500",
				"G1 X190 Y190 F4500",
				"M0;Do the actual pause",
				"G1 Z71 F4500",
				"G1 X1 Y2 F4500",
				"G1 Z70 F4500",
				"G92 E300",
			},
		},
		{
			name:    "griffin only waits",
			dialect: DialectGriffin,
			park:    Park{X: 190, Y: 190, Retract: true},
			state:   state,
			want: []string{
				";TYPE:CUSTOM",
				";added code by post processing",
				";script: PauseAtTopAndBottom",
				"M0;Do the actual pause",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Synthesize(tt.dialect, tt.park, tt.state))
		})
	}
}

func TestDialectString(t *testing.T) {
	assert.Equal(t, "legacy", DialectLegacy.String())
	assert.Equal(t, "griffin", DialectGriffin.String())
}
