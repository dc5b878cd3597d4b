package pauseattopbottom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gcodepost/internal/gcode"
	"git.home.luguber.info/inful/gcodepost/internal/settings"
)

func resolve(t *testing.T, values settings.Values) *settings.Store {
	t.Helper()
	store, err := Schema().Resolve(values)
	require.NoError(t, err)
	return store
}

func allFlags() settings.Values {
	return settings.Values{
		KeyPauseInBottomLayer:    true,
		KeyPauseBeforeSkinBottom: true,
		KeyPauseAfterSkinBottom:  true,
		KeyPauseInTopLayer:       true,
		KeyPauseBeforeSkinTop:    true,
		KeyPauseAfterSkinTop:     true,
	}
}

func TestExecute_BottomLayerScenario(t *testing.T) {
	data := []string{";LAYER:0\nG1 X10 Y10 Z0.2\n;TYPE:SKIN\nG1 X12\n;TYPE:WALL-OUTER\n"}
	store := resolve(t, settings.Values{
		KeyPauseInBottomLayer:    true,
		KeyPauseBeforeSkinBottom: true,
		KeyPauseAfterSkinBottom:  true,
		KeyHeadParkX:             190,
		KeyHeadParkY:             190,
		KeyRetractBeforePause:    true,
	})

	got, stats := Execute(data, store, nil)

	want := strings.Join([]string{
		";LAYER:0",
		"G1 X10 Y10 Z0.2",
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
		"G92 E0",
		";TYPE:SKIN",
		"G1 X12",
		";TYPE:CUSTOM",
		";added code by post processing",
		";script: PauseAtTopAndBottom",
		"G10",
		"G1 Z1.2 F4500",
		"G1 X190 Y190 F4500",
		"G1 Z70 F4500",
		"M0;Do the actual pause",
		"G1 Z1.2 F4500",
		"G1 X12 Y10 F4500",
		"G11",
		"G1 Z0.2 F4500",
		"G92 E0",
		";TYPE:WALL-OUTER",
		"",
	}, "\n")

	require.Len(t, got, 1)
	assert.Equal(t, want, got[0])
	assert.Equal(t, 2, stats.Pauses)
	assert.Equal(t, DialectLegacy, stats.Dialect)
}

func TestExecute_NoFlagsIsNoOp(t *testing.T) {
	data := twoLayerDoc()
	want := twoLayerDoc()

	got, stats := Execute(data, Schema().Defaults(), nil)

	assert.Equal(t, want, got)
	assert.Zero(t, stats.Pauses)
}

func TestExecute_GatesOffSubFlagsOnIsNoOp(t *testing.T) {
	store := resolve(t, settings.Values{
		KeyPauseBeforeSkinBottom: true,
		KeyPauseAfterSkinBottom:  true,
		KeyPauseBeforeSkinTop:    true,
		KeyPauseAfterSkinTop:     true,
	})

	got, _ := Execute(twoLayerDoc(), store, nil)
	assert.Equal(t, twoLayerDoc(), got)
}

func TestExecute_NotIdempotent(t *testing.T) {
	store := resolve(t, settings.Values{
		KeyPauseInBottomLayer:    true,
		KeyPauseBeforeSkinBottom: true,
	})

	once, _ := Execute(twoLayerDoc(), store, nil)
	onceText := strings.Join(once, "")
	twice, stats := Execute(once, store, nil)

	assert.Equal(t, 1, strings.Count(onceText, "M0;Do the actual pause"))
	assert.Equal(t, 2, strings.Count(strings.Join(twice, ""), "M0;Do the actual pause"))
	assert.Equal(t, 1, stats.Pauses)
}

func TestExecute_TopLayerOnlyTouchesTopBlock(t *testing.T) {
	store := resolve(t, settings.Values{
		KeyPauseInTopLayer:    true,
		KeyPauseBeforeSkinTop: true,
	})

	got, stats := Execute(twoLayerDoc(), store, nil)

	require.Len(t, got, 3)
	assert.Equal(t, twoLayerDoc()[0], got[0])
	assert.Equal(t, twoLayerDoc()[1], got[1])
	assert.Contains(t, got[2], "M0;Do the actual pause\nG1 Z1.4 F4500\nG1 X7 Y20 F4500\nG11\nG1 Z0.4 F4500\nG92 E3\n;TYPE:SKIN")
	assert.Equal(t, 1, stats.Pauses)
}

func TestExecute_GriffinIsDocumentWide(t *testing.T) {
	data := twoLayerDoc()
	data[0] = ";FLAVOR:Griffin\nG1 Y20\n"

	got, stats := Execute(data, resolve(t, allFlags()), nil)
	text := strings.Join(got, "")

	assert.Equal(t, DialectGriffin, stats.Dialect)
	assert.Equal(t, 5, stats.Pauses)
	assert.Equal(t, 5, strings.Count(text, "M0;Do the actual pause"))
	assert.NotContains(t, text, "F4500")
	assert.NotContains(t, text, "G10")
}

func TestExecute_EmptyDocument(t *testing.T) {
	got, stats := Execute([]string{}, resolve(t, allFlags()), nil)
	assert.Empty(t, got)
	assert.Zero(t, stats.Pauses)
}

func TestExecute_LayerCountUnchanged(t *testing.T) {
	data := twoLayerDoc()
	got, stats := Execute(data, resolve(t, allFlags()), nil)

	assert.Len(t, got, 3)
	assert.Equal(t, 5, stats.Pauses)
	assert.Equal(t, 5, strings.Count(strings.Join(got, ""), ";script: PauseAtTopAndBottom"))
}

func TestExecute_EndCodeIsNotTopLayer(t *testing.T) {
	tail := "M104 S0\nM140 S0\nM84\n;End of Gcode\n;SETTING_3 {\"machine\": \"\"}\n"
	doc := ";FLAVOR:Marlin\n;LAYER:0\nG1 X1 Y1 Z0.2\n;TIME_ELAPSED:10.0\n" +
		";LAYER:1\nG1 X2 Y2 Z0.4\n;TYPE:SKIN\nG1 X5\n;TIME_ELAPSED:20.0\n" + tail

	store := resolve(t, settings.Values{
		KeyPauseInTopLayer:   true,
		KeyPauseAfterSkinTop: true,
	})
	got, stats := Execute(gcode.SplitLayers(doc), store, nil)

	require.Len(t, got, 4)
	assert.Equal(t, tail, got[3])
	assert.Equal(t, 1, stats.Pauses)
	assert.Contains(t, got[2], "G92 E0\n;TIME_ELAPSED:20.0\n")

	_, after, _ := strings.Cut(gcode.JoinLayers(got), "M84")
	assert.NotContains(t, after, "M0;Do the actual pause")
}
