package pauseattopbottom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func point(layer, line int) InsertionPoint {
	return InsertionPoint{Layer: layer, Line: line}
}

func TestSplice_DescendingOrderKeepsIndicesValid(t *testing.T) {
	layers := []string{"h0\nh1", "a\nb\nc\nd"}

	// Discovery order is ascending; applying it as-is would shift line 3.
	got := Splice(layers, []Insertion{
		{Point: point(1, 1), Lines: []string{"P1"}},
		{Point: point(1, 3), Lines: []string{"P3a", "P3b"}},
		{Point: point(0, 0), Lines: []string{"P0"}},
	})

	assert.Equal(t, []string{"P0\nh0\nh1", "a\nP1\nb\nc\nP3a\nP3b\nd"}, got)
}

func TestSplice_SamePointKeepsDiscoveryOrder(t *testing.T) {
	got := Splice([]string{"a\nb"}, []Insertion{
		{Point: point(0, 1), Lines: []string{"first"}},
		{Point: point(0, 1), Lines: []string{"second"}},
	})

	assert.Equal(t, []string{"a\nfirst\nsecond\nb"}, got)
}

func TestSplice_EndOfBlockAndOutOfRange(t *testing.T) {
	got := Splice([]string{"a\n"}, []Insertion{
		{Point: point(0, 2), Lines: []string{"tail"}},
		{Point: point(0, 9), Lines: []string{"clamped"}},
		{Point: point(5, 0), Lines: []string{"ignored"}},
	})

	assert.Equal(t, []string{"a\n\ntail\nclamped"}, got)
}

func TestSplice_NoInsertions(t *testing.T) {
	layers := []string{"a\nb"}
	assert.Equal(t, []string{"a\nb"}, Splice(layers, nil))
}
