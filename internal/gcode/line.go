// Package gcode models slicer G-code at the line level: classification of
// instruction and marker lines, numeric field extraction and line building,
// toolhead position tracking, and layer block splitting.
package gcode

import (
	"strconv"
	"strings"
)

// Marker prefixes written by the slicer as structural comments.
const (
	LayerPrefix  = ";LAYER:"
	TypePrefix   = ";TYPE:"
	FlavorPrefix = ";FLAVOR:"

	// TimeElapsedPrefix closes every layer in Cura output.
	TimeElapsedPrefix = ";TIME_ELAPSED:"
	// SettingsPrefix starts the serialized slicer settings at the end of a file.
	SettingsPrefix = ";SETTING_3"
)

// Region and flavor names the post-processing scripts care about.
const (
	TypeSkin      = "SKIN"
	TypeCustom    = "CUSTOM"
	FlavorGriffin = "Griffin"
)

// Kind tags the classification of a single G-code line.
type Kind int

const (
	// KindEmpty is a blank line (including the empty tail after a final newline).
	KindEmpty Kind = iota
	// KindCommand is an instruction line such as "G1 X10 Y10".
	KindCommand
	// KindComment is any other line starting with ';'.
	KindComment
	// KindLayerMarker is exactly ";LAYER:<n>".
	KindLayerMarker
	// KindTypeMarker contains ";TYPE:<name>".
	KindTypeMarker
	// KindFlavorMarker contains ";FLAVOR:<name>".
	KindFlavorMarker
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindCommand:
		return "command"
	case KindComment:
		return "comment"
	case KindLayerMarker:
		return "layer"
	case KindTypeMarker:
		return "type"
	case KindFlavorMarker:
		return "flavor"
	default:
		return "unknown"
	}
}

// Coords holds the axis fields present on a line. A field is only meaningful
// when its Has flag is set.
type Coords struct {
	X, Y, Z, E             float64
	HasX, HasY, HasZ, HasE bool
}

// Line is the classified form of one G-code line.
type Line struct {
	Text   string
	Kind   Kind
	Layer  int    // KindLayerMarker
	Type   string // KindTypeMarker
	Flavor string // KindFlavorMarker
	Coords Coords
}

// IsComment reports whether the raw line starts with the comment marker.
// Every marker kind is also a comment.
func (l Line) IsComment() bool {
	return strings.HasPrefix(l.Text, ";")
}

// IsLayerZero reports whether the line is exactly the layer zero marker.
func (l Line) IsLayerZero() bool {
	return l.Kind == KindLayerMarker && l.Layer == 0 && l.Text == LayerPrefix+"0"
}

// IsSkin reports whether the line opens a skin region.
func (l Line) IsSkin() bool {
	return l.Kind == KindTypeMarker && strings.HasPrefix(l.Type, TypeSkin)
}

// IsGriffin reports whether the line declares the Griffin flavor.
func (l Line) IsGriffin() bool {
	return l.Kind == KindFlavorMarker && strings.HasPrefix(l.Flavor, FlavorGriffin)
}

// Classify inspects a line once and returns its tagged form together with
// any X/Y/Z/E fields it carries.
func Classify(text string) Line {
	line := Line{Text: text, Coords: extractCoords(text)}

	switch {
	case strings.TrimSpace(text) == "":
		line.Kind = KindEmpty
	case isLayerMarker(text):
		line.Kind = KindLayerMarker
		line.Layer, _ = strconv.Atoi(text[len(LayerPrefix):])
	case strings.Contains(text, TypePrefix):
		line.Kind = KindTypeMarker
		line.Type = markerValue(text, TypePrefix)
	case strings.Contains(text, FlavorPrefix):
		line.Kind = KindFlavorMarker
		line.Flavor = markerValue(text, FlavorPrefix)
	case strings.HasPrefix(text, ";"):
		line.Kind = KindComment
	default:
		line.Kind = KindCommand
	}

	return line
}

// isLayerMarker matches ";LAYER:<n>" with an optional leading minus sign
// (raft layers are numbered negatively).
func isLayerMarker(text string) bool {
	if !strings.HasPrefix(text, LayerPrefix) {
		return false
	}
	_, err := strconv.Atoi(text[len(LayerPrefix):])
	return err == nil
}

func markerValue(text, prefix string) string {
	rest := text[strings.Index(text, prefix)+len(prefix):]
	return strings.TrimRight(rest, " \t\r")
}

func extractCoords(text string) Coords {
	var c Coords
	c.X, c.HasX = GetValue(text, 'X')
	c.Y, c.HasY = GetValue(text, 'Y')
	c.Z, c.HasZ = GetValue(text, 'Z')
	c.E, c.HasE = GetValue(text, 'E')
	return c
}
