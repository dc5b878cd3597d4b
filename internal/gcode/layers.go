package gcode

import "strings"

// SplitLines splits a layer block on '\n'. A trailing newline yields a final
// empty line so that JoinLines(SplitLines(s)) == s.
func SplitLines(block string) []string {
	return strings.Split(block, "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// HasLayerMarker reports whether a block contains a ";LAYER:" marker.
func HasLayerMarker(block string) bool {
	return strings.Contains(block, LayerPrefix)
}

// SplitLayers cuts a whole G-code document into layer blocks the way the
// slicer hands them to post-processing scripts: block 0 holds everything
// before the first layer marker, every ";LAYER:<n>" line starts a new block,
// and the end G-code after the last layer gets a block of its own.
// Concatenating the blocks reproduces the document.
func SplitLayers(document string) []string {
	if document == "" {
		return []string{}
	}

	var blocks []string
	start := 0
	layered := false
	for pos := 0; pos < len(document); {
		next := lineEnd(document, pos)
		if isLayerMarker(strings.TrimRight(document[pos:next], "\r\n")) {
			if pos > start {
				blocks = append(blocks, document[start:pos])
				start = pos
			}
			layered = true
		}
		pos = next
	}

	last := document[start:]
	if layered {
		if cut := trailerStart(last); cut > 0 && cut < len(last) {
			return append(blocks, last[:cut], last[cut:])
		}
	}
	return append(blocks, last)
}

// trailerStart returns the offset in the last layer block where the end
// G-code begins: just past the final ";TIME_ELAPSED:" line, or at the
// settings trailer when the layer has no elapsed-time comment. It returns -1
// when neither is present.
func trailerStart(block string) int {
	cut := -1
	for pos := 0; pos < len(block); {
		next := lineEnd(block, pos)
		line := strings.TrimRight(block[pos:next], "\r\n")
		switch {
		case strings.HasPrefix(line, TimeElapsedPrefix):
			cut = next
		case cut < 0 && strings.HasPrefix(line, SettingsPrefix):
			return pos
		}
		pos = next
	}
	return cut
}

// lineEnd returns the offset just past the line starting at pos, newline
// included.
func lineEnd(s string, pos int) int {
	if end := strings.IndexByte(s[pos:], '\n'); end >= 0 {
		return pos + end + 1
	}
	return len(s)
}

// JoinLayers concatenates layer blocks back into a document.
func JoinLayers(blocks []string) string {
	return strings.Join(blocks, "")
}
