// Package gcodefile reads and writes G-code documents as layer blocks and
// manages the marker line that records a document was post-processed.
package gcodefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	perrors "git.home.luguber.info/inful/gcodepost/internal/errors"
	"git.home.luguber.info/inful/gcodepost/internal/gcode"
)

// MarkLine is prepended to the header block of every document written by
// gcodepost.
const MarkLine = ";POSTPROCESSED"

// DefaultSuffix is appended to the input file name when no output path is
// given.
const DefaultSuffix = "_pp"

// Document is a G-code file cut into layer blocks. Layers always use '\n'
// line endings; CRLF records that the file used "\r\n" so String restores it.
type Document struct {
	Layers []string
	CRLF   bool
}

// Parse splits text into layer blocks. Binary input (NUL bytes or invalid
// UTF-8) is rejected. CRLF line endings are converted to '\n'.
func Parse(text string) (*Document, error) {
	if strings.IndexByte(text, 0) >= 0 {
		return nil, fmt.Errorf("document contains NUL bytes, binary G-code is not supported")
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("document is not valid UTF-8")
	}
	crlf := strings.Contains(text, "\r\n")
	if crlf {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	return &Document{Layers: gcode.SplitLayers(text), CRLF: crlf}, nil
}

// Read loads and parses the file at path.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.FileError("read", path, err)
	}
	doc, err := Parse(string(data))
	if err != nil {
		return nil, perrors.ParseError(path, err)
	}
	return doc, nil
}

// String reassembles the document text in its original line endings.
func (d *Document) String() string {
	text := gcode.JoinLayers(d.Layers)
	if d.CRLF {
		return strings.ReplaceAll(text, "\n", "\r\n")
	}
	return text
}

// Write stores doc at path, replacing any existing file atomically.
func Write(path string, doc *Document) error {
	tempPath := path + ".tmp"

	// Write to temporary file first
	if err := os.WriteFile(tempPath, []byte(doc.String()), 0o644); err != nil {
		return perrors.FileError("write", tempPath, err)
	}

	// Atomically replace the target
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return perrors.FileError("rename", path, err)
	}

	return nil
}

// IsMarked reports whether the document starts with MarkLine.
func (d *Document) IsMarked() bool {
	if len(d.Layers) == 0 {
		return false
	}
	first, _, _ := strings.Cut(d.Layers[0], "\n")
	return strings.HasPrefix(strings.TrimRight(first, "\r"), MarkLine)
}

// Mark prepends MarkLine to the header block, naming the scripts that ran.
// An already marked document is left alone.
func (d *Document) Mark(scripts ...string) {
	if d.IsMarked() {
		return
	}

	line := MarkLine
	if len(scripts) > 0 {
		line += " by gcodepost: " + strings.Join(scripts, ",")
	}
	line += "\n"

	if len(d.Layers) == 0 {
		d.Layers = []string{line}
		return
	}
	if gcode.HasLayerMarker(d.Layers[0]) && strings.HasPrefix(d.Layers[0], gcode.LayerPrefix) {
		// The document starts directly with a layer; give it a header block.
		d.Layers = append([]string{line}, d.Layers...)
		return
	}
	d.Layers[0] = line + d.Layers[0]
}

// OutputPath derives the default output file name: part.gcode becomes
// part_pp.gcode.
func OutputPath(in, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + suffix + ext
}
